package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kadirpekel/cocode/internal/hook"
	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/tool"
)

// streamResult is what one pass through consumeStream produced.
type streamResult struct {
	text       string
	responseID string
	usage      protocol.Usage
}

// consumeStream ranges over a provider adapter's event channel until it
// observes a terminal Completed or Error event (or the channel closes
// early), appending items to history eagerly as they complete and
// queuing tool calls into executor as they arrive, in stream order.
func (d *Driver) consumeStream(ctx context.Context, events <-chan protocol.ResponseEvent, executor *tool.Executor, toolCtx *tool.Context) (streamResult, error) {
	var result streamResult
	var deltaBuf strings.Builder
	assistantAppended := false
	toolArgBufs := map[string]*strings.Builder{}

	for event := range events {
		switch event.Kind {
		case protocol.EventResponseCreated:
			result.responseID = event.ResponseID

		case protocol.EventDelta:
			deltaBuf.WriteString(event.Text)

		case protocol.EventReasoning:
			// Partial thinking text for live display only; the
			// complete thinking block (if the adapter emits one)
			// arrives as an OutputItemDone.

		case protocol.EventOutputItemDone:
			d.hist.Append(event.Item)
			if event.Item.Kind == protocol.ItemAssistantMessage {
				assistantAppended = true
				result.text += event.Item.TextOf()
			}

		case protocol.EventToolUseStart:
			toolArgBufs[event.ToolUseID] = &strings.Builder{}

		case protocol.EventToolUseDelta:
			if buf, ok := toolArgBufs[event.ToolUseID]; ok {
				buf.WriteString(event.ToolArgsRaw)
			}

		case protocol.EventToolUseDone:
			argsRaw := event.ToolArgsRaw
			if argsRaw == "" {
				if buf, ok := toolArgBufs[event.ToolUseID]; ok {
					argsRaw = buf.String()
				}
			}
			delete(toolArgBufs, event.ToolUseID)
			if err := d.dispatchToolCall(ctx, event, argsRaw, executor, toolCtx); err != nil {
				return result, err
			}

		case protocol.EventCompleted:
			if !assistantAppended && deltaBuf.Len() > 0 {
				d.hist.Append(protocol.AssistantMessage(protocol.OutputText(deltaBuf.String())))
				result.text += deltaBuf.String()
			}
			result.usage = event.Usage
			return result, nil

		case protocol.EventError:
			return result, fmt.Errorf("driver: stream error (%s): %w", event.ErrKind, event.Err)
		}
	}

	// The channel closed without a terminal event; treat whatever text
	// accumulated as the final output rather than silently dropping it.
	if !assistantAppended && deltaBuf.Len() > 0 {
		d.hist.Append(protocol.AssistantMessage(protocol.OutputText(deltaBuf.String())))
		result.text += deltaBuf.String()
	}
	return result, nil
}

// dispatchToolCall appends the completed function call to history, runs
// PreToolUse hooks, and — unless a hook blocked the call — admits it to
// the executor. Blocked calls get their FunctionCallOutput synthesized
// immediately rather than running the tool at all.
func (d *Driver) dispatchToolCall(ctx context.Context, event protocol.ResponseEvent, argsRaw string, executor *tool.Executor, toolCtx *tool.Context) error {
	call := protocol.ToolCall{ID: event.ToolUseID, Name: event.ToolName, ArgumentsJSON: argsRaw}
	d.hist.Append(protocol.FunctionCall(call.Name, call.ArgumentsJSON, call.ID))
	d.toolDispatch[call.ID] = toolDispatchInfo{name: call.Name, start: time.Now()}

	args := map[string]any{}
	if argsRaw != "" {
		if err := json.Unmarshal([]byte(argsRaw), &args); err != nil {
			d.hist.Append(protocol.FunctionCallOutput(call.ID, "invalid tool arguments: "+err.Error(), false))
			d.finishToolDispatch(call.ID, false)
			return nil
		}
	}

	if d.hooks != nil {
		eff, err := d.hooks.Dispatch(ctx, d.hookExec, hook.Input{
			Event: hook.EventPreToolUse, SessionID: d.cfg.ConversationID,
			ProjectDir: d.cfg.CWD, ToolName: call.Name, ToolInput: args,
		})
		if err != nil {
			if d.cfg.Recorder != nil {
				d.cfg.Recorder.HookDecision(string(hook.EventPreToolUse), "non_blocking_error")
			}
			d.finishToolDispatch(call.ID, false)
			return fmt.Errorf("driver: PreToolUse hook for %s: %w", call.Name, err)
		}
		if eff.Blocked {
			d.hist.Append(protocol.FunctionCallOutput(call.ID, "blocked by hook: "+eff.BlockedBy, false))
			if d.cfg.Recorder != nil {
				d.cfg.Recorder.HookDecision(string(hook.EventPreToolUse), "blocked")
			}
			d.finishToolDispatch(call.ID, false)
			return nil
		}
		if d.cfg.Recorder != nil {
			d.cfg.Recorder.HookDecision(string(hook.EventPreToolUse), "allowed")
		}
		if eff.Command != "" {
			args["command"] = eff.Command
		}
	}

	executor.OnToolComplete(toolCtx, call, args)
	return nil
}

// finishToolDispatch reports a tool call that never reached
// recordToolResults (invalid arguments, hook block or error) and
// clears its dispatch-tracking entry.
func (d *Driver) finishToolDispatch(callID string, success bool) {
	info, ok := d.toolDispatch[callID]
	if !ok {
		return
	}
	delete(d.toolDispatch, callID)
	if d.cfg.Recorder != nil {
		d.cfg.Recorder.ToolCallCompleted(info.name, time.Since(info.start), success)
	}
}

// recordToolResults appends a FunctionCallOutput per tool result, runs
// PostToolUse hooks, and returns how many results were recorded (the
// driver's continuation signal).
func (d *Driver) recordToolResults(ctx context.Context, results []tool.CallResult) int {
	for _, r := range results {
		success := r.Err == nil && !r.Output.IsError
		content := r.Output.TextOf()
		if r.Err != nil {
			content = r.Err.Error()
		}
		d.hist.Append(protocol.FunctionCallOutput(r.CallID, content, success))
		d.finishToolDispatch(r.CallID, success)

		if d.hooks != nil {
			_, _ = d.hooks.Dispatch(ctx, d.hookExec, hook.Input{
				Event: hook.EventPostToolUse, SessionID: d.cfg.ConversationID,
				ProjectDir:   d.cfg.CWD,
				ToolResponse: map[string]any{"call_id": r.CallID, "success": success, "content": content},
			})
			if d.cfg.Recorder != nil {
				decision := "allowed"
				if !success {
					decision = "tool_error"
				}
				d.cfg.Recorder.HookDecision(string(hook.EventPostToolUse), decision)
			}
		}
	}
	return len(results)
}
