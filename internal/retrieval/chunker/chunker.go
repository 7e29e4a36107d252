// Package chunker splits source files into token-bounded, slightly
// overlapping retrieval.CodeChunks, snapping boundaries to a statement
// start (such as a func or class line, or a closing brace) when a
// lightweight per-language prefix table recognizes one, so a chunk
// rarely starts or ends mid-statement.
package chunker

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/kadirpekel/cocode/internal/retrieval"
)

// Config tunes chunk sizing and file selection.
type Config struct {
	MinTokens         int
	MaxTokens         int
	OverlapRatio      float64
	IncludeExtensions []string // empty = allow-list below
	ExcludeDirs       []string
	ExcludeExtensions []string
}

func DefaultConfig() Config {
	return Config{
		MinTokens:    256,
		MaxTokens:    512,
		OverlapRatio: 0.10,
		ExcludeDirs:  []string{".git", "node_modules", "vendor", ".cache", "dist", "build"},
	}
}

// defaultTextExtensions is the allow-list applied to files whose
// extension isn't recognized as a known programming language, so a
// README or a YAML config still gets indexed even without a language
// profile.
var defaultTextExtensions = map[string]bool{
	".md": true, ".txt": true, ".yaml": true, ".yml": true, ".toml": true,
	".json": true, ".rst": true, ".cfg": true, ".ini": true,
}

var languageByExt = map[string]string{
	".go": "go", ".py": "python", ".rs": "rust", ".js": "javascript",
	".ts": "typescript", ".tsx": "typescript", ".jsx": "javascript",
	".java": "java", ".c": "c", ".h": "c", ".cpp": "cpp", ".hpp": "cpp",
	".rb": "ruby", ".sh": "shell",
}

// boundaryPrefixes are line prefixes (after trimming leading
// whitespace) that make good chunk-start points for the languages
// that use brace or keyword block syntax; used to snap a cut point to
// a statement boundary rather than an arbitrary line.
var boundaryPrefixes = map[string][]string{
	"go":         {"func ", "type ", "}"},
	"python":     {"def ", "class ", "@"},
	"rust":       {"fn ", "impl ", "struct ", "pub fn "},
	"java":       {"public ", "private ", "protected ", "}"},
	"javascript": {"function ", "class ", "export "},
	"typescript": {"function ", "class ", "export ", "interface "},
}

// DetectLanguage returns the language profile for path's extension, or
// "" if the extension isn't in the known-language table.
func DetectLanguage(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

// Allowed reports whether path should be chunked at all: known
// languages are always allowed; unknown extensions fall back to the
// default text allow-list; excluded dirs/extensions are rejected.
func Allowed(cfg Config, path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, dir := range cfg.ExcludeDirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return false
		}
	}
	for _, excluded := range cfg.ExcludeExtensions {
		if ext == excluded {
			return false
		}
	}
	if len(cfg.IncludeExtensions) > 0 {
		for _, inc := range cfg.IncludeExtensions {
			if ext == inc {
				return true
			}
		}
		return false
	}
	if _, known := languageByExt[ext]; known {
		return true
	}
	return defaultTextExtensions[ext]
}

// approxTokens estimates token count the cheap way: whitespace-split
// word count. Good enough for sizing chunks; not a real tokenizer.
func approxTokens(s string) int {
	return len(strings.Fields(s))
}

func isBoundary(language, line string) bool {
	prefixes, ok := boundaryPrefixes[language]
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(line)
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// Chunk splits content (from filepath path, whose language is
// inferred from its extension) into retrieval.CodeChunks targeting
// cfg.MinTokens..cfg.MaxTokens tokens each, with roughly
// cfg.OverlapRatio of the previous chunk's lines repeated at the start
// of the next chunk. Chunk boundaries prefer a recognized statement
// start when one falls within the target window.
func Chunk(cfg Config, path, content string) []retrieval.CodeChunk {
	if content == "" {
		return nil
	}
	language := DetectLanguage(path)

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}

	var chunks []retrieval.CodeChunk
	start := 0
	for start < len(lines) {
		end := start
		tokens := 0
		lastBoundary := -1
		for end < len(lines) {
			tokens += approxTokens(lines[end])
			if isBoundary(language, lines[end]) && end > start {
				lastBoundary = end
			}
			end++
			if tokens >= cfg.MaxTokens {
				break
			}
		}
		// Prefer snapping to a statement boundary once we've passed
		// the minimum size, so a chunk doesn't end mid-function.
		if lastBoundary > start && tokens >= cfg.MinTokens && lastBoundary < end-1 {
			end = lastBoundary
		}
		if end > len(lines) {
			end = len(lines)
		}

		chunkLines := lines[start:end]
		chunks = append(chunks, retrieval.CodeChunk{
			Filepath:  path,
			Language:  language,
			Content:   strings.Join(chunkLines, "\n"),
			StartLine: start + 1,
			EndLine:   end,
		})

		if end >= len(lines) {
			break
		}
		overlapLines := int(float64(end-start) * cfg.OverlapRatio)
		if overlapLines == 0 && cfg.OverlapRatio > 0 && end-start > 1 {
			overlapLines = 1
		}
		next := end - overlapLines
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// ChunkFile reads path relative to root and chunks it, returning nil
// (not an error) when Allowed rejects the file.
func ChunkFile(cfg Config, root, relPath string) ([]retrieval.CodeChunk, error) {
	if !Allowed(cfg, relPath) {
		return nil, nil
	}
	raw, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, err
	}
	return Chunk(cfg, relPath, string(raw)), nil
}
