package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kadirpekel/cocode/internal/protocol"
)

// Run spawns a child Driver sharing this Driver's registry, adapter
// registry, reminders and hooks but owning its own history and tool
// surface, and drives it through one turn with prompt as the sole user
// input. It satisfies subagent.Runner, so an internal/subagent.Manager
// can use a Driver directly to run foreground and background sub-agent
// turns.
func (d *Driver) Run(ctx context.Context, model, prompt string, tools []string, resumeFrom string) (string, error) {
	childCfg := d.cfg
	childCfg.AgentID = uuid.NewString()
	childCfg.IsMainAgent = false
	childCfg.Model = model
	childCfg.ToolNames = tools
	childCfg.ConversationID = fmt.Sprintf("%s/sub/%s", d.cfg.ConversationID, childCfg.AgentID)
	childCfg.PlanMode = false
	childCfg.ReminderContext = nil

	child := New(d.adapters, d.registry, d.features, d.approval, d.reminders, d.reminderCfg, d.hooks, d.compactor, childCfg)

	if resumeFrom != "" {
		// Resuming a prior sub-agent transcript is read back from the
		// output store (internal/subagent writes one line of JSON per
		// sub-agent to <agentID>.jsonl); the driver itself is
		// transcript-agnostic, so the caller is expected to replay any
		// prior turns via SubmitInput before calling Run again. Nothing
		// further to do here.
		_ = resumeFrom
	}

	child.SubmitInput(protocol.UserMessage(protocol.InputText(prompt)))
	return child.RunTurn(ctx)
}
