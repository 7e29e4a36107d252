package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// EditTool performs an exact-unique-match-by-default search-and-replace
// using the three-strategy matcher in ApplyEditStrategies, with an
// escaping pre-correction retry when every strategy misses.
type EditTool struct {
	tool.Base
}

func NewEditTool() *EditTool {
	return &EditTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Edit",
			Description: "Replace old_string with new_string in a file, using exact, flexible, then regex matching in turn.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"path", "old_string", "new_string"},
				"properties": map[string]any{
					"path":        map[string]any{"type": "string"},
					"old_string":  map[string]any{"type": "string"},
					"new_string":  map[string]any{"type": "string"},
					"replace_all": map[string]any{"type": "boolean"},
				},
			},
			Concurrency:    protocol.Unsafe,
			MaxResultChars: 4_000,
		}},
	}
}

func (t *EditTool) CheckPermission(ctx *tool.Context, args map[string]any) protocol.PermissionResult {
	path := argString(args, "path")
	if err := tool.CheckPlanMode(ctx, path); err != nil {
		return protocol.Denied(err.Error())
	}
	return protocol.Allowed()
}

func (t *EditTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	path := argString(args, "path")
	oldString := argString(args, "old_string")
	newString := argString(args, "new_string")
	replaceAll := argBool(args, "replace_all")

	full, err := resolvePath(ctx.WorkDir, path)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path", err)
	}

	if err := ctx.ReadTracker.CheckWritable(full, statFile, readFileHash); err != nil {
		return protocol.ToolOutput{}, err
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to read file", err)
	}
	content := string(raw)

	result, count, strategy, ok := ApplyEditWithAlgorithmicFallbacks(content, oldString, newString, replaceAll)
	if !ok {
		hint := FindClosestMatch(content, oldString)
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("no edit strategy matched old_string in %s: %s", path, hint))
	}

	if n := strings.Count(content, oldString); !replaceAll && n > 1 {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("old_string matched %d times in %s; pass replace_all or make it unique", n, path))
	}

	if err := os.WriteFile(full, []byte(result), 0o644); err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to write file", err)
	}

	hash := hashContent([]byte(result))
	ctx.ReadTracker.RecordRead(full, hash, nowModTime(full))

	msg := fmt.Sprintf("edited %s via %s strategy, %d replacement(s)%s", path, strategy, count, DiffStats(oldString, newString))
	return protocol.TextOutput(msg).WithFileRead(full, result, hash), nil
}
