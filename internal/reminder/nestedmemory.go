package reminder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NestedMemoryGenerator discovers CLAUDE.md/AGENTS.md-style memory
// files from the working directory up through its ancestors (bounded
// by MaxImportDepth) and injects their content, each capped by
// MaxContentBytes/MaxLines.
type NestedMemoryGenerator struct{}

func (NestedMemoryGenerator) Name() string                   { return "nested_memory" }
func (NestedMemoryGenerator) AttachmentType() AttachmentType { return AttachmentNestedMemory }
func (NestedMemoryGenerator) Tier() Tier                     { return TierTurnStart }
func (NestedMemoryGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.NestedMemory }

func (NestedMemoryGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if gctx.InjectCount > 0 {
		return nil, nil
	}
	cfg := gctx.Config.NestedMemory
	found := discoverMemoryFiles(gctx.CWD, cfg)
	if len(found) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for _, path := range found {
		content, truncatedAt := readBounded(path, cfg.MaxContentBytes, cfg.MaxLines)
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s", path, content)
		if truncatedAt {
			b.WriteString("\n[truncated]\n")
		}
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentNestedMemory, Content: b.String()}, nil
}

// discoverMemoryFiles walks from dir up through its parents (depth
// bounded by cfg.MaxImportDepth) looking for each configured pattern.
func discoverMemoryFiles(dir string, cfg NestedMemoryConfig) []string {
	var found []string
	cur := dir
	for depth := 0; depth < cfg.MaxImportDepth; depth++ {
		for _, pattern := range cfg.Patterns {
			candidate := filepath.Join(cur, pattern)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return found
}

func readBounded(path string, maxBytes int64, maxLines int) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	lines := 0
	for scanner.Scan() {
		if lines >= maxLines || int64(b.Len()) >= maxBytes {
			return b.String(), true
		}
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
		lines++
	}
	return b.String(), false
}
