package tools

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// ListDirTool lists the immediate contents of a directory, directories
// first, then files, both alphabetical.
type ListDirTool struct {
	tool.Base
}

func NewListDirTool() *ListDirTool {
	return &ListDirTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "ListDir",
			Description: "List the immediate contents of a directory.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"path"},
				"properties": map[string]any{
					"path": map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 20_000,
		}},
	}
}

func (t *ListDirTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	path := argString(args, "path")
	full, err := resolvePath(ctx.WorkDir, path)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path", err)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to read directory", err)
	}

	var dirs, files []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name()+"/")
		} else {
			files = append(files, e.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	var out strings.Builder
	fmt.Fprintf(&out, "%s (%d entries)\n", path, len(dirs)+len(files))
	for _, d := range dirs {
		out.WriteString(d + "\n")
	}
	for _, f := range files {
		out.WriteString(f + "\n")
	}
	return protocol.TextOutput(strings.TrimRight(out.String(), "\n")), nil
}
