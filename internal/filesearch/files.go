package filesearch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileResult is one fuzzy file-path match.
type FileResult struct {
	Path  string
	Score int
}

// FileIndex is a flat, sorted list of every file path under a root,
// searched with the same subsequence fuzzy matcher SymbolIndex uses —
// the file-path analogue of a symbol search ("fzf over the repo tree").
type FileIndex struct {
	paths []string
}

func NewFileIndex() *FileIndex {
	return &FileIndex{}
}

// Build walks root and records every non-ignored file's path, relative
// to root, using the same skip-dir set internal/tools.GlobTool applies.
func (idx *FileIndex) Build(root string) error {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			switch info.Name() {
			case ".git", "node_modules", "vendor", ".cocode":
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(paths)
	idx.paths = paths
	return nil
}

// Len reports the number of indexed file paths.
func (idx *FileIndex) Len() int { return len(idx.paths) }

// Search fuzzy-matches query (case-insensitive) against every indexed
// path and returns up to limit results, best match first.
func (idx *FileIndex) Search(query string, limit int) []FileResult {
	if query == "" {
		return nil
	}
	queryLower := strings.ToLower(query)

	var results []FileResult
	for _, p := range idx.paths {
		_, score, ok := fuzzyMatch(strings.ToLower(p), queryLower)
		if !ok {
			continue
		}
		results = append(results, FileResult{Path: p, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
