package driver

import (
	"context"

	"github.com/google/uuid"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/reminder"
)

// runReminders invokes the reminder orchestrator for tier and, if it
// produced anything, returns the synthetic tool-use/tool-result pair to
// splice into the prompt (per the system-reminder mechanism: reminders
// ride along as a fake tool exchange so they survive model replay
// without looking like a real user turn).
func (d *Driver) runReminders(ctx context.Context, tier reminder.Tier) []protocol.ResponseItem {
	if d.reminders == nil {
		return nil
	}

	gctx := &reminder.GeneratorContext{
		AgentID:        d.cfg.AgentID,
		IsMainAgent:    d.cfg.IsMainAgent,
		CWD:            d.cfg.CWD,
		ConversationID: d.cfg.ConversationID,
		PlanMode:       d.cfg.PlanMode,
		InjectCount:    d.injectCount,
		Config:         d.reminderCfg,
	}
	if d.cfg.ReminderContext != nil {
		d.cfg.ReminderContext(gctx)
	}

	result, err := d.reminders.Run(ctx, gctx, tier)
	if err != nil || result.Body == "" {
		return nil
	}
	d.injectCount++
	if d.cfg.Recorder != nil {
		d.cfg.Recorder.ReminderEmitted(string(tier))
	}

	if d.cfg.OnRemindersProduced != nil {
		d.cfg.OnRemindersProduced(tier, result.Produced)
	}

	callID := "reminder_" + uuid.NewString()
	call := protocol.FunctionCall("system_reminder", "{}", callID)
	output := protocol.FunctionCallOutput(callID, result.Body, true)

	// Appended to the owned history too, not just returned, so the
	// reminder survives into later turns' incremental suffix the same
	// way a real tool exchange would.
	d.hist.Append(call)
	d.hist.Append(output)

	return []protocol.ResponseItem{call, output}
}
