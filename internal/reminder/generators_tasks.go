package reminder

import (
	"context"
	"fmt"
	"strings"
)

// ChangedFilesGenerator reports files that changed on disk since the
// last time this generator ran, using a FileTracker rather than
// tool.ReadTracker (which has no iteration API).
type ChangedFilesGenerator struct {
	tracker *FileTracker
}

func NewChangedFilesGenerator(tracker *FileTracker) *ChangedFilesGenerator {
	return &ChangedFilesGenerator{tracker: tracker}
}

func (g *ChangedFilesGenerator) Name() string                   { return "changed_files" }
func (g *ChangedFilesGenerator) AttachmentType() AttachmentType { return AttachmentChangedFiles }
func (g *ChangedFilesGenerator) Tier() Tier                     { return TierTurnStart }
func (g *ChangedFilesGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.ChangedFiles }
func (g *ChangedFilesGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	changes := gctx.ChangedFiles
	if g.tracker != nil && changes == nil {
		changes = g.tracker.Diff()
	}
	if len(changes) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString("Files changed since the last turn:\n")
	for _, c := range changes {
		fmt.Fprintf(&b, "  %s: %s\n", c.Status, c.Path)
	}
	return &SystemReminder{Type: AttachmentChangedFiles, Content: b.String()}, nil
}

// BackgroundTaskGenerator reports completed background shell/subagent
// tasks that haven't been surfaced to the model yet.
type BackgroundTaskGenerator struct{}

func (BackgroundTaskGenerator) Name() string                   { return "background_task" }
func (BackgroundTaskGenerator) AttachmentType() AttachmentType { return AttachmentBackgroundTask }
func (BackgroundTaskGenerator) Tier() Tier                     { return TierTurnStart }
func (BackgroundTaskGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.BackgroundTask }
func (BackgroundTaskGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	var due []BackgroundTask
	for _, t := range gctx.BackgroundTasks {
		if !t.Notified && (t.Status == "completed" || t.Status == "failed") {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString("Background task updates:\n")
	for _, t := range due {
		fmt.Fprintf(&b, "  [%s] %s (%s): %s\n", t.ID, t.Kind, t.Status, t.Summary)
	}
	return &SystemReminder{Type: AttachmentBackgroundTask, Content: b.String()}, nil
}

// LSPDiagnosticsGenerator reports diagnostics at or above the
// configured minimum severity.
type LSPDiagnosticsGenerator struct{}

func (LSPDiagnosticsGenerator) Name() string                   { return "lsp_diagnostics" }
func (LSPDiagnosticsGenerator) AttachmentType() AttachmentType { return AttachmentLSPDiagnostics }
func (LSPDiagnosticsGenerator) Tier() Tier                     { return TierEndOfTurn }
func (LSPDiagnosticsGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.LSPDiagnostics }
func (LSPDiagnosticsGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	min := severityRank(gctx.Config.Attachments.LSPDiagnosticsMinLevel)
	var relevant []Diagnostic
	for _, d := range gctx.Diagnostics {
		if severityRank(d.Severity) <= min {
			relevant = append(relevant, d)
		}
	}
	if len(relevant) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString("Diagnostics:\n")
	for _, d := range relevant {
		fmt.Fprintf(&b, "  %s:%d [%s] %s\n", d.File, d.Line, d.Severity, d.Message)
	}
	return &SystemReminder{Type: AttachmentLSPDiagnostics, Content: b.String()}, nil
}

// TodoRemindersGenerator nudges the agent to keep its todo list
// current when one exists but hasn't been touched, mirroring
// tools.TodoStore's Get/Set shape.
type TodoRemindersGenerator struct{}

func (TodoRemindersGenerator) Name() string                   { return "todo_reminders" }
func (TodoRemindersGenerator) AttachmentType() AttachmentType { return AttachmentTodoReminders }
func (TodoRemindersGenerator) Tier() Tier                     { return TierEndOfTurn }
func (TodoRemindersGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.TodoReminders }
func (TodoRemindersGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if len(gctx.Todos) == 0 {
		return nil, nil
	}
	var pending, inProgress int
	for _, t := range gctx.Todos {
		switch t.Status {
		case "pending":
			pending++
		case "in_progress":
			inProgress++
		}
	}
	if pending == 0 && inProgress == 0 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentTodoReminders, Content: fmt.Sprintf(
		"Todo list has %d pending and %d in-progress item(s). Keep it updated as work completes.", pending, inProgress)}, nil
}

// AvailableSkillsGenerator wraps the already-built
// tools.ListAvailableSkills output, which the caller pre-renders into
// GeneratorContext.AvailableSkills to avoid an import cycle between
// internal/tools and internal/reminder.
type AvailableSkillsGenerator struct{}

func (AvailableSkillsGenerator) Name() string                   { return "available_skills" }
func (AvailableSkillsGenerator) AttachmentType() AttachmentType { return AttachmentAvailableSkills }
func (AvailableSkillsGenerator) Tier() Tier                     { return TierTurnStart }
func (AvailableSkillsGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.AvailableSkills }
func (AvailableSkillsGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if strings.TrimSpace(gctx.AvailableSkills) == "" || gctx.InjectCount > 0 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentAvailableSkills, Content: gctx.AvailableSkills}, nil
}

// InvokedSkillsGenerator records which skills were invoked this turn,
// so a compaction later can recall the usage history.
type InvokedSkillsGenerator struct{}

func (InvokedSkillsGenerator) Name() string                   { return "invoked_skills" }
func (InvokedSkillsGenerator) AttachmentType() AttachmentType { return AttachmentInvokedSkills }
func (InvokedSkillsGenerator) Tier() Tier                     { return TierEndOfTurn }
func (InvokedSkillsGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.InvokedSkills }
func (InvokedSkillsGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if len(gctx.InvokedSkills) == 0 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentInvokedSkills, Content: "Skills invoked this turn: " + strings.Join(gctx.InvokedSkills, ", ")}, nil
}

// AlreadyReadFilesGenerator synthesizes a Read-tool transcript for
// files the conversation already has full content for, so the model
// doesn't re-issue a Read it doesn't need.
type AlreadyReadFilesGenerator struct{}

func (AlreadyReadFilesGenerator) Name() string                   { return "already_read_files" }
func (AlreadyReadFilesGenerator) AttachmentType() AttachmentType { return AttachmentAlreadyReadFiles }
func (AlreadyReadFilesGenerator) Tier() Tier                     { return TierTurnStart }
func (AlreadyReadFilesGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.AlreadyReadFiles }
func (AlreadyReadFilesGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if len(gctx.AlreadyRead) == 0 {
		return nil, nil
	}
	var b strings.Builder
	for _, e := range gctx.AlreadyRead {
		fmt.Fprintf(&b, "Called the Read tool with the following input: %s\n", jsonObj("file_path", e.Path))
		fmt.Fprintf(&b, "Result of calling the Read tool: %q\n\n", e.Content)
	}
	return &SystemReminder{Type: AttachmentAlreadyReadFiles, Content: b.String()}, nil
}

// CompactFileReferenceGenerator points the agent back at a full
// compaction summary file on disk, rather than inlining the whole
// summary into every subsequent turn's reminder block.
type CompactFileReferenceGenerator struct {
	Path string
}

func (g CompactFileReferenceGenerator) Name() string { return "compact_file_reference" }
func (g CompactFileReferenceGenerator) AttachmentType() AttachmentType {
	return AttachmentCompactFileRef
}
func (g CompactFileReferenceGenerator) Tier() Tier { return TierTurnStart }
func (g CompactFileReferenceGenerator) IsEnabled(cfg Config) bool {
	return cfg.Attachments.CompactFileReference
}
func (g CompactFileReferenceGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if strings.TrimSpace(g.Path) == "" {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentCompactFileRef, Content: "Full pre-compaction transcript saved at: " + g.Path}, nil
}

// AgentMentionsGenerator reports @-mentioned subagent names found in
// the user prompt, so the driver knows to route to them. Mention
// parsing itself is deferred to whatever invokes the subagent (the
// orchestrator only surfaces the raw names found in the prompt).
type AgentMentionsGenerator struct{}

func (AgentMentionsGenerator) Name() string                   { return "agent_mentions" }
func (AgentMentionsGenerator) AttachmentType() AttachmentType { return AttachmentAgentMentions }
func (AgentMentionsGenerator) Tier() Tier                     { return TierUserPrompt }
func (AgentMentionsGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.AgentMentions }
func (AgentMentionsGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	names := parseAgentMentions(gctx.UserPrompt)
	if len(names) == 0 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentAgentMentions, Content: "Mentioned agents: " + strings.Join(names, ", ")}, nil
}

func parseAgentMentions(prompt string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(prompt) {
		if !strings.HasPrefix(word, "@agent-") {
			continue
		}
		name := strings.TrimPrefix(word, "@agent-")
		name = strings.Trim(name, ".,:;!?")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// DelegateModeGenerator reminds a subagent that it's operating under
// delegate mode (its own tool results should not surface raw reminder
// blocks back up to the parent agent).
type DelegateModeGenerator struct{}

func (DelegateModeGenerator) Name() string                   { return "delegate_mode" }
func (DelegateModeGenerator) AttachmentType() AttachmentType { return AttachmentDelegateMode }
func (DelegateModeGenerator) Tier() Tier                     { return TierTurnStart }
func (DelegateModeGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.DelegateMode }
func (DelegateModeGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if gctx.IsMainAgent {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentDelegateMode, Content: "Operating as a delegated subagent: return your final result as plain text for the parent agent to use, not a conversational reply."}, nil
}

// PlanVerificationGenerator reminds the agent to re-check its plan
// against the actual diff before declaring the task complete.
type PlanVerificationGenerator struct{}

func (PlanVerificationGenerator) Name() string                   { return "plan_verification" }
func (PlanVerificationGenerator) AttachmentType() AttachmentType { return AttachmentPlanVerification }
func (PlanVerificationGenerator) Tier() Tier                     { return TierEndOfTurn }
func (PlanVerificationGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.PlanVerification }
func (PlanVerificationGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if !gctx.PlanMode {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentPlanVerification, Content: "Before exiting plan mode, verify every planned step is reflected in the presented plan."}, nil
}
