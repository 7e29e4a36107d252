package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// GlobTool finds files matching a glob pattern, sorted by most recent
// modification time first (the order most useful to a model orienting
// itself in a repo).
type GlobTool struct {
	tool.Base
}

func NewGlobTool() *GlobTool {
	return &GlobTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Glob",
			Description: "Find files matching a glob pattern, most recently modified first.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"pattern"},
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string"},
					"path":    map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 20_000,
		}},
	}
}

type globMatch struct {
	path    string
	modTime int64
}

func (t *GlobTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	pattern := argString(args, "pattern")
	root := argString(args, "path")
	if root == "" {
		root = "."
	}
	full, err := resolvePath(ctx.WorkDir, root)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path", err)
	}

	var matches []globMatch
	err = filepath.Walk(full, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(ctx.WorkDir, path)
		ok, matchErr := filepath.Match(pattern, filepath.Base(path))
		if matchErr == nil && ok {
			matches = append(matches, globMatch{path: rel, modTime: info.ModTime().UnixNano()})
			return nil
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			matches = append(matches, globMatch{path: rel, modTime: info.ModTime().UnixNano()})
		}
		return nil
	})
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "glob walk failed", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].modTime > matches[j].modTime })

	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = m.path
	}
	if len(lines) == 0 {
		return protocol.TextOutput("no files matched " + pattern), nil
	}
	return protocol.TextOutput(fmt.Sprintf("%d file(s)\n%s", len(lines), strings.Join(lines, "\n"))), nil
}
