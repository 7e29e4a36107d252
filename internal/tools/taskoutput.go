package tools

import (
	"fmt"
	"time"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/shell"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/subagent"
	"github.com/kadirpekel/cocode/internal/tool"
)

const taskOutputPollInterval = 250 * time.Millisecond

// TaskOutputTool retrieves the result of a background sub-agent or
// background shell, polling up to a bounded timeout rather than
// blocking indefinitely.
type TaskOutputTool struct {
	tool.Base
	Manager    *subagent.Manager
	Background *shell.Store
}

func NewTaskOutputTool(mgr *subagent.Manager, bg *shell.Store) *TaskOutputTool {
	return &TaskOutputTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "TaskOutput",
			Description: "Retrieve the output of a background sub-agent or background shell, polling up to a timeout.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"id"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string"},
					"timeout_sec": map[string]any{"type": "integer"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 50_000,
		}},
		Manager:    mgr,
		Background: bg,
	}
}

func (t *TaskOutputTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	id := argString(args, "id")
	timeoutSec := argInt(args, "timeout_sec", 30)
	deadline := time.Now().Add(time.Duration(timeoutSec) * time.Second)

	for {
		if t.Manager != nil {
			if result, found := t.Manager.Poll(id); found {
				if result.Status != "running" {
					if result.Status == "failed" {
						return protocol.ErrorOutput(result.Error), nil
					}
					return protocol.TextOutput(result.Output), nil
				}
			}
		}
		if t.Background != nil {
			if done, output, runErr, found := t.Background.Poll(id); found {
				if done {
					if runErr != nil {
						return protocol.ErrorOutput(fmt.Sprintf("%v\n%s", runErr, output)), nil
					}
					return protocol.TextOutput(output), nil
				}
			}
		}
		if time.Now().After(deadline) {
			return protocol.ToolOutput{}, tool.NewError(status.Timeout, fmt.Sprintf("%s has not completed within %ds", id, timeoutSec))
		}
		select {
		case <-ctx.Done():
			return protocol.ToolOutput{}, tool.WrapError(status.Cancelled, "task output poll cancelled", ctx.Err())
		case <-time.After(taskOutputPollInterval):
		}
	}
}
