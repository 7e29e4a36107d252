package protocol

// EventKind tags a ResponseEvent variant emitted by a provider adapter's
// stream.
type EventKind string

const (
	EventResponseCreated EventKind = "response_created"
	EventOutputItemDone  EventKind = "output_item_done"
	EventDelta           EventKind = "delta"
	EventReasoning       EventKind = "reasoning"
	EventToolUseStart    EventKind = "tool_use_start"
	EventToolUseDelta    EventKind = "tool_use_delta"
	EventToolUseDone     EventKind = "tool_use_done"
	EventCompleted       EventKind = "completed"
	EventError           EventKind = "error"
)

// Usage reports token accounting for a completed stream.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}

// ResponseEvent is one unit produced by an adapter's streaming
// transform. Only fields relevant to Kind are populated.
type ResponseEvent struct {
	Kind EventKind

	ResponseID string // ResponseCreated

	Item ResponseItem // OutputItemDone

	Text string // Delta, Reasoning

	ToolUseID   string // ToolUseStart/Delta/Done
	ToolName    string
	ToolArgsRaw string

	Usage Usage // Completed

	ErrKind string // Error
	Err     error
}
