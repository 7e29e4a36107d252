package protocol

import "time"

// TaskType names what kind of background task a BackgroundTask tracks.
type TaskType string

const (
	TaskShell      TaskType = "shell"
	TaskAsyncAgent TaskType = "async_agent"
)

// TaskStatus is the lifecycle state of a BackgroundTask.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// BackgroundTask tracks a spawned shell or async sub-agent. Created on
// spawn; status transitions driven by the executor; consumed by the
// reminder orchestrator which then marks it Notified.
type BackgroundTask struct {
	TaskID         string
	Type           TaskType
	ConversationID string
	Status         TaskStatus
	FinalOutput    string
	PartialOutput  string
	Notified       bool
	StartedAt      time.Time
	FinishedAt     time.Time
}

// ToolAccess describes which tools an AgentDefinition may use.
type ToolAccess struct {
	All  bool
	List []string
}

// AgentSource names where an AgentDefinition was loaded from.
type AgentSource string

const (
	SourceBuiltin AgentSource = "builtin"
	SourceUser    AgentSource = "user"
	SourceProject AgentSource = "project"
)

// RunConfig bounds a spawned agent's execution.
type RunConfig struct {
	MaxTurns int
}

// AgentDefinition is loaded from disk at session start and referenced
// (not copied) by each spawn.
type AgentDefinition struct {
	AgentType        string
	Access           ToolAccess
	Disallowed       []string
	Source           AgentSource
	Model            string
	PromptTemplate   string
	Run              RunConfig
	ApprovalMode     string
	CriticalReminder string
}
