// Package hook implements the hook executor: a fixed taxonomy of
// lifecycle events, each of which can run zero or more matcher-scoped
// actions (an external command or an in-process function) and feed
// their decisions back into the turn as approval/sandbox/mutation
// effects.
package hook

import "time"

// Event names a point in the agent lifecycle a hook can attach to.
type Event string

const (
	EventPreToolUse       Event = "PreToolUse"
	EventPostToolUse      Event = "PostToolUse"
	EventUserPromptSubmit Event = "UserPromptSubmit"
	EventStop             Event = "Stop"
	EventSubagentStart    Event = "SubagentStart"
	EventSubagentStop     Event = "SubagentStop"
	EventNotification     Event = "Notification"
	EventPreCompact       Event = "PreCompact"
	EventSessionStart     Event = "SessionStart"
	EventSessionEnd       Event = "SessionEnd"
)

var allEvents = map[Event]bool{
	EventPreToolUse: true, EventPostToolUse: true, EventUserPromptSubmit: true,
	EventStop: true, EventSubagentStart: true, EventSubagentStop: true,
	EventNotification: true, EventPreCompact: true, EventSessionStart: true,
	EventSessionEnd: true,
}

// IsValidEvent reports whether name is one of the fixed lifecycle
// events hooks may attach to.
func IsValidEvent(name Event) bool { return allEvents[name] }

// Input is the state passed to a hook, both as JSON on a Command
// hook's stdin and as the argument to a Native hook's function.
type Input struct {
	Event          Event          `json:"hook_event_name"`
	SessionID      string         `json:"session_id"`
	ProjectDir     string         `json:"project_dir"`
	ToolName       string         `json:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty"`
	ToolResponse   map[string]any `json:"tool_response,omitempty"`
	Prompt         string         `json:"prompt,omitempty"`
	Message        string         `json:"message,omitempty"`
	TranscriptPath string         `json:"transcript_path,omitempty"`
}

// Decision is the normalized outcome of running one hook action,
// regardless of whether it spoke the "HookResult" or "HookOutput"
// JSON shape on the wire.
type Decision struct {
	Blocked       bool
	Reason        string
	Approved      bool
	Sandbox       string
	MutatedCmd    string
	MutatedEnv    map[string]string
	Metadata      map[string]any
	Log           string
	CacheDecision bool
	// NonBlockingErr is set when the hook exited non-zero/non-2; the
	// turn proceeds but the error is surfaced to the transcript.
	NonBlockingErr string
}

// rawHookResult is the "HookResult"-shaped JSON a hook may emit on
// stdout: {"decision": "approve"|"block", "reason": "...", ...}.
type rawHookResult struct {
	Decision       string            `json:"decision"`
	Reason         string            `json:"reason"`
	Sandbox        string            `json:"sandbox,omitempty"`
	UpdatedCommand string            `json:"updated_command,omitempty"`
	UpdatedEnv     map[string]string `json:"updated_env,omitempty"`
	Metadata       map[string]any    `json:"metadata,omitempty"`
	Cache          bool              `json:"cache,omitempty"`
}

// rawHookOutput is the alternate "HookOutput"-shaped JSON a hook may
// emit: {"continue": bool, "stopReason": "...", "hookSpecificOutput": {...}}.
type rawHookOutput struct {
	Continue           bool           `json:"continue"`
	StopReason         string         `json:"stopReason"`
	HookSpecificOutput map[string]any `json:"hookSpecificOutput,omitempty"`
}

// Action is one thing a hook definition runs: either a Command
// (external process) or a Native (in-process function).
type Action interface {
	isAction()
}

// Command spawns a process, feeds it the Input as JSON on stdin and
// context via environment variables, and interprets its exit code and
// stdout per the standard hook protocol.
type Command struct {
	Run     string
	Timeout time.Duration
}

func (Command) isAction() {}

// NativeFunc is an in-process hook implementation, for built-in hooks
// that don't need subprocess isolation.
type NativeFunc func(ctx ExecContext, in Input) (*Decision, error)

// Native wraps a NativeFunc as an Action.
type Native struct {
	Fn NativeFunc
}

func (Native) isAction() {}

// Definition binds an Action to an event, optionally scoped to tools
// matching Matcher (a glob-style tool-name pattern; empty matches
// every tool).
type Definition struct {
	Event   Event
	Matcher string
	Action  Action
	// Timeout bounds Command actions; defaults to 60s if zero.
	Timeout time.Duration
}

// ExecContext carries the ambient values a Command hook receives as
// environment variables.
type ExecContext struct {
	ProjectDir string
	SessionID  string
}
