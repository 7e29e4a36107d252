package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

const defaultMaxFileSize = 10 * 1024 * 1024

// ReadTool reads a file's contents, optionally restricted to a line
// range, with line numbers prefixed by default. It records the read in
// the session's ReadTracker so a later write can satisfy the
// read-before-write invariant.
type ReadTool struct {
	tool.Base
	MaxFileSize int64
}

func NewReadTool() *ReadTool {
	return &ReadTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Read",
			Description: "Read the contents of a file, with optional line-range selection and line numbers.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"path"},
				"properties": map[string]any{
					"path":       map[string]any{"type": "string"},
					"start_line": map[string]any{"type": "integer"},
					"end_line":   map[string]any{"type": "integer"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 100_000,
		}},
		MaxFileSize: defaultMaxFileSize,
	}
}

func (t *ReadTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	path := argString(args, "path")
	full, err := resolvePath(ctx.WorkDir, path)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path", err)
	}

	info, err := statFile(full)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to stat file", err)
	}
	if info.Size() > t.MaxFileSize {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("file too large: %d bytes (max %d)", info.Size(), t.MaxFileSize))
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to read file", err)
	}

	lines := strings.Split(string(content), "\n")
	total := len(lines)
	start := argInt(args, "start_line", 1)
	if start < 1 {
		start = 1
	}
	if start > total {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("start_line (%d) exceeds file length (%d lines)", start, total))
	}
	end := argInt(args, "end_line", total)
	if end > total || end <= 0 {
		end = total
	}
	if start > end {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("invalid range: start_line (%d) > end_line (%d)", start, end))
	}

	var out strings.Builder
	fmt.Fprintf(&out, "FILE: %s\n", path)
	fmt.Fprintf(&out, "STATS: total lines %d", total)
	if start != 1 || end != total {
		fmt.Fprintf(&out, " | showing %d-%d", start, end)
	}
	out.WriteString("\n")
	for i := start - 1; i < end && i < len(lines); i++ {
		fmt.Fprintf(&out, "%6d\t%s\n", i+1, lines[i])
	}

	hash := hashContent(content)
	ctx.ReadTracker.RecordRead(full, hash, info.ModTime().UnixNano())

	return protocol.TextOutput(out.String()).WithFileRead(full, string(content), hash), nil
}
