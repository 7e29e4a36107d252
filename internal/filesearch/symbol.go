// Package filesearch indexes a workspace's files and source symbols so
// tools can answer "where is X defined" and "which files look like Y"
// without shelling out to an external indexer for every call.
package filesearch

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SymbolKind classifies what kind of definition a Symbol names.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolType     SymbolKind = "type"
	SymbolMethod   SymbolKind = "method"
	SymbolConstant SymbolKind = "constant"
	SymbolVariable SymbolKind = "variable"
)

// Symbol is one indexed definition.
type Symbol struct {
	Name      string
	NameLower string
	Kind      SymbolKind
	FilePath  string
	Line      int
}

// SearchResult is a Symbol plus its fuzzy-match quality, best first.
type SearchResult struct {
	Symbol
	Score        int
	MatchIndices []int
}

// SymbolIndex is an in-memory symbol index kept as a slice sorted by
// NameLower. Search fuzzy-matches every entry; ExactPrefix uses a
// binary-search lower bound over the sorted slice — no external
// trie/suffix-array dependency, since none of the example repos'
// dependency sets carry one for Go.
type SymbolIndex struct {
	byFile map[string][]Symbol
	sorted []Symbol // kept sorted by NameLower; rebuilt on every mutation
}

// NewSymbolIndex returns an empty index. Use Build or UpdateFiles to
// populate it.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{byFile: make(map[string][]Symbol)}
}

// Build walks root, extracts definitions from every recognized source
// file, and replaces the index's contents.
func (idx *SymbolIndex) Build(root string) error {
	idx.byFile = make(map[string][]Symbol)

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
		if !recognizedExtension(path) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		idx.indexFile(rel, path)
		return nil
	})
	if err != nil {
		return err
	}
	idx.rebuildSorted()
	return nil
}

// UpdateFiles re-extracts symbols for changed (or deleted) files and
// rebuilds the sorted slice once at the end, rather than per file.
func (idx *SymbolIndex) UpdateFiles(root string, changed []string) {
	for _, rel := range changed {
		full := rel
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, rel)
		}
		if _, err := os.Stat(full); err != nil {
			delete(idx.byFile, rel)
			continue
		}
		if !recognizedExtension(full) {
			continue
		}
		idx.indexFile(rel, full)
	}
	idx.rebuildSorted()
}

// RemoveFile drops every symbol indexed for filePath.
func (idx *SymbolIndex) RemoveFile(filePath string) {
	if _, ok := idx.byFile[filePath]; ok {
		delete(idx.byFile, filePath)
		idx.rebuildSorted()
	}
}

func (idx *SymbolIndex) indexFile(relPath, fullPath string) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		delete(idx.byFile, relPath)
		return
	}
	syms := extractSymbols(relPath, string(data))
	if len(syms) == 0 {
		delete(idx.byFile, relPath)
		return
	}
	idx.byFile[relPath] = syms
}

func (idx *SymbolIndex) rebuildSorted() {
	all := make([]Symbol, 0, len(idx.byFile)*4)
	for _, syms := range idx.byFile {
		all = append(all, syms...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].NameLower != all[j].NameLower {
			return all[i].NameLower < all[j].NameLower
		}
		return all[i].FilePath < all[j].FilePath
	})
	idx.sorted = all
}

// Len reports the total number of indexed symbols.
func (idx *SymbolIndex) Len() int { return len(idx.sorted) }

// Search fuzzy-matches query against every indexed symbol name and
// returns up to limit results, best match first. Every symbol is
// scored with the subsequence fuzzy matcher in one linear pass (no
// binary-search narrowing), so a query like "mdlinfo" can still find
// "ModelInfo".
func (idx *SymbolIndex) Search(query string, limit int) []SearchResult {
	if query == "" {
		return nil
	}
	queryLower := strings.ToLower(query)

	type scored struct {
		sym     Symbol
		score   int
		indices []int
	}
	var candidates []scored
	for _, sym := range idx.sorted {
		indices, score, ok := fuzzyMatch(sym.NameLower, queryLower)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{sym, score, indices})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].sym.Name < candidates[j].sym.Name
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		out[i] = SearchResult{Symbol: c.sym, Score: c.score, MatchIndices: c.indices}
	}
	return out
}

// lowerBound returns the index of the first symbol whose NameLower is
// >= prefix, using binary search over the sorted slice. Exposed mainly
// so exact-prefix lookups (e.g. an IDE-style "go to definition" on a
// fully-typed name) can skip the fuzzy scorer entirely.
func (idx *SymbolIndex) lowerBound(prefix string) int {
	return sort.Search(len(idx.sorted), func(i int) bool {
		return idx.sorted[i].NameLower >= prefix
	})
}

// ExactPrefix returns every symbol whose name starts with prefix
// (case-insensitive), using the sorted slice's binary-search lower
// bound instead of a linear scan.
func (idx *SymbolIndex) ExactPrefix(prefix string) []Symbol {
	prefixLower := strings.ToLower(prefix)
	start := idx.lowerBound(prefixLower)
	var out []Symbol
	for i := start; i < len(idx.sorted); i++ {
		if !strings.HasPrefix(idx.sorted[i].NameLower, prefixLower) {
			break
		}
		out = append(out, idx.sorted[i])
	}
	return out
}

func recognizedExtension(path string) bool {
	switch filepath.Ext(path) {
	case ".go", ".rs", ".py", ".js", ".ts", ".tsx", ".jsx", ".java", ".c", ".h", ".cpp", ".hpp":
		return true
	default:
		return false
	}
}

// definitionPatterns is a conservative, language-agnostic set of
// regexes for common top-level definition shapes. This is not a parser:
// it exists to seed a "jump to definition" index cheaply, not to
// replace a real AST-backed extractor.
var definitionPatterns = []struct {
	re   *regexp.Regexp
	kind SymbolKind
}{
	{regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`), SymbolMethod},
	{regexp.MustCompile(`^\s*type\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:struct|interface)\b`), SymbolType},
	{regexp.MustCompile(`^\s*(?:pub\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(<]`), SymbolFunction},
	{regexp.MustCompile(`^\s*(?:pub\s+)?struct\s+([A-Za-z_][A-Za-z0-9_]*)\b`), SymbolType},
	{regexp.MustCompile(`^\s*(?:pub\s+)?enum\s+([A-Za-z_][A-Za-z0-9_]*)\b`), SymbolType},
	{regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`), SymbolFunction},
	{regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)\b`), SymbolType},
	{regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), SymbolFunction},
	{regexp.MustCompile(`^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(:]`), SymbolType},
	{regexp.MustCompile(`^\s*const\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`), SymbolConstant},
}

func extractSymbols(relPath, content string) []Symbol {
	var out []Symbol
	for i, line := range strings.Split(content, "\n") {
		for _, p := range definitionPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out = append(out, Symbol{
				Name:      m[1],
				NameLower: strings.ToLower(m[1]),
				Kind:      p.kind,
				FilePath:  relPath,
				Line:      i + 1,
			})
			break
		}
	}
	return out
}
