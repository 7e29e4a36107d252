package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// WriteTool creates or overwrites a file. It enforces plan-mode path
// restriction and the read-before-write invariant before touching disk.
type WriteTool struct {
	tool.Base
	MaxFileSize int
}

func NewWriteTool() *WriteTool {
	return &WriteTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Write",
			Description: "Create a new file or overwrite an existing one with the given content.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"path", "content"},
				"properties": map[string]any{
					"path":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Unsafe,
			MaxResultChars: 4_000,
		}},
		MaxFileSize: defaultMaxFileSize,
	}
}

func (t *WriteTool) CheckPermission(ctx *tool.Context, args map[string]any) protocol.PermissionResult {
	path := argString(args, "path")
	if err := tool.CheckPlanMode(ctx, path); err != nil {
		return protocol.Denied(err.Error())
	}
	return protocol.Allowed()
}

func (t *WriteTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	path := argString(args, "path")
	content := argString(args, "content")
	if len(content) > t.MaxFileSize {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("content too large: %d bytes (max %d)", len(content), t.MaxFileSize))
	}

	full, err := resolvePath(ctx.WorkDir, path)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path", err)
	}

	if err := ctx.ReadTracker.CheckWritable(full, statFile, readFileHash); err != nil {
		return protocol.ToolOutput{}, err
	}

	existed := false
	if _, err := os.Stat(full); err == nil {
		existed = true
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to create directory", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to write file", err)
	}

	action := "created"
	if existed {
		action = "overwritten"
	}
	hash := hashContent([]byte(content))
	ctx.ReadTracker.RecordRead(full, hash, nowModTime(full))

	msg := fmt.Sprintf("%s %s (%d bytes)", action, path, len(content))
	return protocol.TextOutput(msg).WithFileRead(full, content, hash), nil
}

func readFileHash(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return hashContent(content), nil
}

func nowModTime(path string) int64 {
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().UnixNano()
	}
	return 0
}
