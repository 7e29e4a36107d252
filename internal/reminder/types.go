// Package reminder implements the system-reminder orchestrator: a
// fixed set of AttachmentGenerators that each contribute a slice of
// out-of-band state (changed files, plan-mode status, background task
// results, skill listings, @-mentioned file contents, and so on) which
// get concatenated into one synthetic tool-use/tool-result pair and
// spliced into the turn's history, the way Claude Code surfaces
// ambient context to the model without it being part of the user's
// actual message.
package reminder

import "time"

// AttachmentType names one kind of system reminder.
type AttachmentType string

const (
	AttachmentCriticalInstruction AttachmentType = "critical_instruction"
	AttachmentPlanModeEnter       AttachmentType = "plan_mode_enter"
	AttachmentPlanModeExit        AttachmentType = "plan_mode_exit"
	AttachmentPlanToolReminder    AttachmentType = "plan_tool_reminder"
	AttachmentChangedFiles        AttachmentType = "changed_files"
	AttachmentBackgroundTask      AttachmentType = "background_task"
	AttachmentLSPDiagnostics      AttachmentType = "lsp_diagnostics"
	AttachmentNestedMemory        AttachmentType = "nested_memory"
	AttachmentAvailableSkills     AttachmentType = "available_skills"
	AttachmentAtMentionedFiles    AttachmentType = "at_mentioned_files"
	AttachmentAgentMentions       AttachmentType = "agent_mentions"
	AttachmentInvokedSkills       AttachmentType = "invoked_skills"
	AttachmentOutputStyle         AttachmentType = "output_style"
	AttachmentTodoReminders       AttachmentType = "todo_reminders"
	AttachmentDelegateMode        AttachmentType = "delegate_mode"
	AttachmentPlanVerification    AttachmentType = "plan_verification"
	AttachmentTokenUsage          AttachmentType = "token_usage"
	AttachmentSecurityGuidelines  AttachmentType = "security_guidelines"
	AttachmentAlreadyReadFiles    AttachmentType = "already_read_files"
	AttachmentBudgetUSD           AttachmentType = "budget_usd"
	AttachmentCompactFileRef      AttachmentType = "compact_file_reference"
)

// Tier controls when a generator is eligible to run.
type Tier string

const (
	TierTurnStart  Tier = "turn_start"
	TierUserPrompt Tier = "user_prompt"
	TierEndOfTurn  Tier = "end_of_turn"
)

// SystemReminder is one generator's contribution.
type SystemReminder struct {
	Type    AttachmentType
	Content string
}

// FileStatus is one tracked file's change status since the last turn.
type FileStatus string

const (
	FileModified FileStatus = "modified"
	FileCreated  FileStatus = "created"
	FileDeleted  FileStatus = "deleted"
)

// ChangedFile is one entry in a changed-files report.
type ChangedFile struct {
	Path   string
	Status FileStatus
}

// BackgroundTask is the minimal shape the background-task-status
// generator needs; internal/shell's Store.Tasks reports its background
// shells in this shape.
type BackgroundTask struct {
	ID         string
	Kind       string // "shell" or "agent"
	Status     string // running, completed, failed
	Summary    string
	Notified   bool
	FinishedAt time.Time
}

// Diagnostic is one LSP-style diagnostic surfaced by the generator of
// the same name.
type Diagnostic struct {
	File     string
	Line     int
	Severity string // error, warning, info, hint
	Message  string
}

// AttachmentSettings enables or disables each concrete generator.
// Mirrors the reference implementation's per-attachment flags so every
// generator can be turned off independently without removing it.
type AttachmentSettings struct {
	CriticalInstruction    bool
	PlanModeEnter          bool
	PlanToolReminder       bool
	PlanModeExit           bool
	ChangedFiles           bool
	BackgroundTask         bool
	LSPDiagnostics         bool
	NestedMemory           bool
	AvailableSkills        bool
	AtMentionedFiles       bool
	AgentMentions          bool
	InvokedSkills          bool
	OutputStyle            bool
	TodoReminders          bool
	DelegateMode           bool
	PlanVerification       bool
	TokenUsage             bool
	SecurityGuidelines     bool
	AlreadyReadFiles       bool
	BudgetUSD              bool
	CompactFileReference   bool
	LSPDiagnosticsMinLevel string // error, warning, info, hint
}

func DefaultAttachmentSettings() AttachmentSettings {
	return AttachmentSettings{
		CriticalInstruction:    true,
		PlanModeEnter:          true,
		PlanToolReminder:       true,
		PlanModeExit:           true,
		ChangedFiles:           true,
		BackgroundTask:         true,
		LSPDiagnostics:         true,
		NestedMemory:           true,
		AvailableSkills:        true,
		AtMentionedFiles:       true,
		AgentMentions:          true,
		InvokedSkills:          true,
		OutputStyle:            true,
		TodoReminders:          true,
		DelegateMode:           true,
		PlanVerification:       true,
		TokenUsage:             true,
		SecurityGuidelines:     true,
		AlreadyReadFiles:       true,
		BudgetUSD:              true,
		CompactFileReference:   true,
		LSPDiagnosticsMinLevel: "warning",
	}
}

// AtMentionedFilesConfig bounds how much of an @-mentioned file gets
// injected. These limits are separate from the Read tool's, which
// accepts files up to 10 MiB and caps neither line count nor line
// length.
type AtMentionedFilesConfig struct {
	MaxFileSize   int64
	MaxLines      int
	MaxLineLength int
}

func DefaultAtMentionedFilesConfig() AtMentionedFilesConfig {
	return AtMentionedFilesConfig{MaxFileSize: 100 * 1024, MaxLines: 2000, MaxLineLength: 2000}
}

// NestedMemoryConfig bounds CLAUDE.md-style memory-file discovery.
type NestedMemoryConfig struct {
	MaxContentBytes int64
	MaxLines        int
	MaxImportDepth  int
	Patterns        []string
}

func DefaultNestedMemoryConfig() NestedMemoryConfig {
	return NestedMemoryConfig{
		MaxContentBytes: 40 * 1024,
		MaxLines:        3000,
		MaxImportDepth:  5,
		Patterns:        []string{"CLAUDE.md", "AGENTS.md", ".claude/settings.json"},
	}
}

// Config is the orchestrator's full configuration.
type Config struct {
	Enabled             bool
	TimeoutPerGenerator time.Duration
	Attachments         AttachmentSettings
	NestedMemory        NestedMemoryConfig
	AtMentionedFiles    AtMentionedFilesConfig
	CriticalInstruction string
	SecurityGuidelines  string
}

func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		TimeoutPerGenerator: time.Second,
		Attachments:         DefaultAttachmentSettings(),
		NestedMemory:        DefaultNestedMemoryConfig(),
		AtMentionedFiles:    DefaultAtMentionedFilesConfig(),
	}
}

// GeneratorContext is the per-call state every generator may read.
type GeneratorContext struct {
	AgentID             string
	IsMainAgent         bool
	CWD                 string
	ConversationID      string
	UserPrompt          string
	PlanMode            bool
	PlanModeJustEntered bool
	PlanModeJustExited  bool
	InjectCount         int

	Config          Config
	ChangedFiles    []ChangedFile
	BackgroundTasks []BackgroundTask
	Diagnostics     []Diagnostic
	Todos           []TodoItem
	InvokedSkills   []string
	AvailableSkills string // pre-rendered by the caller (tools.ListAvailableSkills)
	AlreadyRead     []ReadTranscriptEntry
	TokenUsage      *TokenUsage
	BudgetUSD       *BudgetStatus
}

// TodoItem mirrors tools.Todo without importing the tools package
// (which would create an import cycle, since tools eventually depends
// on reminder for the available-skills listing format).
type TodoItem struct {
	ID      string
	Content string
	Status  string
}

// ReadTranscriptEntry is one file the already-read-files generator
// synthesizes a Read call for.
type ReadTranscriptEntry struct {
	Path    string
	Content string
}

// TokenUsage reports the turn's running token counts.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	ContextLimit int
}

// BudgetStatus reports a configured USD spend cap's current position.
type BudgetStatus struct {
	SpentUSD float64
	LimitUSD float64
}
