package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// Corrector requests a corrected (old_string, new_string) pair from a
// model after every algorithmic edit strategy has missed. It is the
// one place in the edit pipeline that may issue a model call.
type Corrector interface {
	Correct(ctx context.Context, path, oldString, newString, content string) (correctedOld, correctedNew string, err error)
}

// SmartEditTool is Edit plus one additional fallback: when the exact,
// flexible, regex, escaping-correction, and trim-pair strategies all
// miss, it sends a small structured prompt through Corrector asking
// for a corrected pair, then runs the same strategies and algorithmic
// fallbacks once more against that pair.
type SmartEditTool struct {
	tool.Base
	Corrector Corrector
}

func NewSmartEditTool(corrector Corrector) *SmartEditTool {
	return &SmartEditTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "SmartEdit",
			Description: "Replace old_string with new_string in a file, falling back to a model-assisted correction when every algorithmic matcher misses.",
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
		Corrector: corrector,
	}
}

func (t *SmartEditTool) CheckPermission(ctx *tool.Context, args map[string]any) protocol.PermissionResult {
	path := argString(args, "path")
	if err := tool.CheckPlanMode(ctx, path); err != nil {
		return protocol.Denied(err.Error())
	}
	return protocol.Allowed()
}

func (t *SmartEditTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
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
	if !ok && t.Corrector != nil {
		correctedOld, correctedNew, cerr := t.Corrector.Correct(ctx, path, oldString, newString, content)
		if cerr == nil {
			correctedNew = UnescapeStringForLLMBug(correctedNew)
			result, count, strategy, ok = ApplyEditWithAlgorithmicFallbacks(content, correctedOld, correctedNew, replaceAll)
			if ok {
				strategy = "model-corrected-" + strategy
			}
		}
	}
	if !ok {
		hint := FindClosestMatch(content, oldString)
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
			fmt.Sprintf("no edit strategy matched old_string in %s, even after correction: %s", path, hint))
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
