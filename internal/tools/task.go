package tools

import (
	"fmt"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/subagent"
	"github.com/kadirpekel/cocode/internal/tool"
)

// TaskTool spawns a sub-agent, foreground or background, through a
// subagent.Manager.
type TaskTool struct {
	tool.Base
	Manager *subagent.Manager
}

func NewTaskTool(mgr *subagent.Manager) *TaskTool {
	return &TaskTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Task",
			Description: "Spawn a sub-agent to carry out a self-contained task, optionally in the background.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"prompt"},
				"properties": map[string]any{
					"prompt":            map[string]any{"type": "string"},
					"model":             map[string]any{"type": "string"},
					"tools":             map[string]any{"type": "array"},
					"run_in_background": map[string]any{"type": "boolean"},
					"resume_from":       map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Safe,
			MaxResultChars: 50_000,
		}},
		Manager: mgr,
	}
}

func (t *TaskTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	if t.Manager == nil {
		return protocol.ToolOutput{}, tool.NewError(status.Unsupported, "sub-agent spawning is not available in this session")
	}
	prompt := argString(args, "prompt")
	model := argString(args, "model")
	background := argBool(args, "run_in_background")
	resumeFrom := argString(args, "resume_from")

	var tools []string
	if raw, ok := args["tools"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				tools = append(tools, s)
			}
		}
	}

	cfg := subagent.SpawnConfig{
		Model:           model,
		Prompt:          prompt,
		Tools:           tools,
		RunInBackground: background,
		ResumeFrom:      resumeFrom,
		IsBuiltinAgent:  false,
	}

	agentID, output, err := t.Manager.Spawn(ctx, cfg)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.Unknown, "sub-agent failed", err)
	}
	if background {
		return protocol.TextOutput(fmt.Sprintf("spawned agent %s in background", agentID)), nil
	}
	return protocol.TextOutput(output), nil
}
