package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// ReadManyFilesTool reads several files in one call, concatenating them
// with per-file headers, and records each in the ReadTracker exactly as
// Read would.
type ReadManyFilesTool struct {
	tool.Base
	MaxFileSize int64
}

func NewReadManyFilesTool() *ReadManyFilesTool {
	return &ReadManyFilesTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "ReadManyFiles",
			Description: "Read several files in one call, each prefixed with a FILE: header.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"paths"},
				"properties": map[string]any{
					"paths": map[string]any{"type": "array"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 200_000,
		}},
		MaxFileSize: defaultMaxFileSize,
	}
}

func (t *ReadManyFilesTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	raw, ok := args["paths"].([]any)
	if !ok || len(raw) == 0 {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "paths must be a non-empty array")
	}

	var out strings.Builder
	var modifiers []protocol.ContextModifier
	for _, v := range raw {
		path, ok := v.(string)
		if !ok {
			continue
		}
		full, err := resolvePath(ctx.WorkDir, path)
		if err != nil {
			fmt.Fprintf(&out, "FILE: %s\nERROR: %v\n\n", path, err)
			continue
		}
		info, err := statFile(full)
		if err != nil {
			fmt.Fprintf(&out, "FILE: %s\nERROR: %v\n\n", path, err)
			continue
		}
		if info.Size() > t.MaxFileSize {
			fmt.Fprintf(&out, "FILE: %s\nERROR: file too large (%d bytes)\n\n", path, info.Size())
			continue
		}
		content, err := os.ReadFile(full)
		if err != nil {
			fmt.Fprintf(&out, "FILE: %s\nERROR: %v\n\n", path, err)
			continue
		}
		hash := hashContent(content)
		ctx.ReadTracker.RecordRead(full, hash, info.ModTime().UnixNano())
		modifiers = append(modifiers, protocol.ContextModifier{
			Kind: protocol.ModifierFileRead, Path: full, Content: string(content), Hash: hash,
		})
		fmt.Fprintf(&out, "FILE: %s\n%s\n\n", path, string(content))
	}

	output := protocol.TextOutput(strings.TrimRight(out.String(), "\n"))
	output.Modifiers = modifiers
	return output, nil
}
