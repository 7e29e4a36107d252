package reminder

import (
	"context"
	"fmt"
	"strings"
)

// CriticalInstructionGenerator injects a fixed operator-configured
// instruction on every turn it's enabled for, unconditionally.
type CriticalInstructionGenerator struct{}

func (CriticalInstructionGenerator) Name() string { return "critical_instruction" }
func (CriticalInstructionGenerator) AttachmentType() AttachmentType {
	return AttachmentCriticalInstruction
}
func (CriticalInstructionGenerator) Tier() Tier { return TierTurnStart }
func (CriticalInstructionGenerator) IsEnabled(cfg Config) bool {
	return cfg.Attachments.CriticalInstruction && strings.TrimSpace(cfg.CriticalInstruction) != ""
}
func (CriticalInstructionGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	return &SystemReminder{Type: AttachmentCriticalInstruction, Content: gctx.Config.CriticalInstruction}, nil
}

// SecurityGuidelinesGenerator injects a static reminder. It runs at
// both TurnStart and EndOfTurn tiers (NewSecurityGuidelinesGenerators
// returns one generator per tier) so the instruction survives a mid-conversation history
// compaction that might otherwise drop a turn-start-only reminder.
type SecurityGuidelinesGenerator struct {
	tier Tier
}

func NewSecurityGuidelinesGenerators() []Generator {
	return []Generator{
		SecurityGuidelinesGenerator{tier: TierTurnStart},
		SecurityGuidelinesGenerator{tier: TierEndOfTurn},
	}
}

func (g SecurityGuidelinesGenerator) Name() string { return "security_guidelines" }
func (g SecurityGuidelinesGenerator) AttachmentType() AttachmentType {
	return AttachmentSecurityGuidelines
}
func (g SecurityGuidelinesGenerator) Tier() Tier { return g.tier }
func (g SecurityGuidelinesGenerator) IsEnabled(cfg Config) bool {
	return cfg.Attachments.SecurityGuidelines
}
func (g SecurityGuidelinesGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	text := gctx.Config.SecurityGuidelines
	if strings.TrimSpace(text) == "" {
		text = "Never generate or guess URLs unless confident they help with the user's task. Assist only with defensive security and authorized testing."
	}
	return &SystemReminder{Type: AttachmentSecurityGuidelines, Content: text}, nil
}

// OutputStyleGenerator surfaces the resolved output-style instruction
// once per conversation, on the first injection only.
type OutputStyleGenerator struct {
	Setting OutputStyleSetting
}

func (g OutputStyleGenerator) Name() string                   { return "output_style" }
func (g OutputStyleGenerator) AttachmentType() AttachmentType { return AttachmentOutputStyle }
func (g OutputStyleGenerator) Tier() Tier                     { return TierTurnStart }
func (g OutputStyleGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.OutputStyle }
func (g OutputStyleGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if gctx.InjectCount > 0 {
		return nil, nil
	}
	instr := g.Setting.ResolveInstruction()
	if instr == "" {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentOutputStyle, Content: instr}, nil
}

// PlanModeEnterGenerator fires once when the agent transitions into
// plan mode, reminding it not to make edits until a plan is approved.
type PlanModeEnterGenerator struct{}

func (PlanModeEnterGenerator) Name() string                   { return "plan_mode_enter" }
func (PlanModeEnterGenerator) AttachmentType() AttachmentType { return AttachmentPlanModeEnter }
func (PlanModeEnterGenerator) Tier() Tier                     { return TierTurnStart }
func (PlanModeEnterGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.PlanModeEnter }
func (PlanModeEnterGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if !gctx.PlanModeJustEntered {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentPlanModeEnter, Content: "Plan mode is active. Investigate and present a plan; do not edit files or run mutating commands until the plan is approved."}, nil
}

// PlanModeExitGenerator fires once when the agent leaves plan mode.
type PlanModeExitGenerator struct{}

func (PlanModeExitGenerator) Name() string                   { return "plan_mode_exit" }
func (PlanModeExitGenerator) AttachmentType() AttachmentType { return AttachmentPlanModeExit }
func (PlanModeExitGenerator) Tier() Tier                     { return TierTurnStart }
func (PlanModeExitGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.PlanModeExit }
func (PlanModeExitGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if !gctx.PlanModeJustExited {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentPlanModeExit, Content: "Plan mode exited. The approved plan may now be implemented."}, nil
}

// PlanToolReminderGenerator nudges the agent to keep using the plan
// tool for this turn, while plan mode is active but no enter/exit
// transition just happened.
type PlanToolReminderGenerator struct{}

func (PlanToolReminderGenerator) Name() string                   { return "plan_tool_reminder" }
func (PlanToolReminderGenerator) AttachmentType() AttachmentType { return AttachmentPlanToolReminder }
func (PlanToolReminderGenerator) Tier() Tier                     { return TierUserPrompt }
func (PlanToolReminderGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.PlanToolReminder }
func (PlanToolReminderGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if !gctx.PlanMode || gctx.PlanModeJustEntered {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentPlanToolReminder, Content: "Still in plan mode: continue investigating and refine the plan rather than making changes."}, nil
}

// TokenUsageGenerator reports running token consumption against the
// context window, so the agent can decide to compact proactively.
type TokenUsageGenerator struct{}

func (TokenUsageGenerator) Name() string                   { return "token_usage" }
func (TokenUsageGenerator) AttachmentType() AttachmentType { return AttachmentTokenUsage }
func (TokenUsageGenerator) Tier() Tier                     { return TierEndOfTurn }
func (TokenUsageGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.TokenUsage }
func (TokenUsageGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	u := gctx.TokenUsage
	if u == nil || u.ContextLimit == 0 {
		return nil, nil
	}
	used := u.InputTokens + u.OutputTokens
	pct := float64(used) / float64(u.ContextLimit) * 100
	if pct < 50 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentTokenUsage, Content: fmt.Sprintf(
		"Context usage: %d/%d tokens (%.0f%%).", used, u.ContextLimit, pct)}, nil
}

// BudgetUSDGenerator reports spend against a configured dollar cap.
type BudgetUSDGenerator struct{}

func (BudgetUSDGenerator) Name() string                   { return "budget_usd" }
func (BudgetUSDGenerator) AttachmentType() AttachmentType { return AttachmentBudgetUSD }
func (BudgetUSDGenerator) Tier() Tier                     { return TierEndOfTurn }
func (BudgetUSDGenerator) IsEnabled(cfg Config) bool      { return cfg.Attachments.BudgetUSD }
func (BudgetUSDGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	b := gctx.BudgetUSD
	if b == nil || b.LimitUSD <= 0 {
		return nil, nil
	}
	pct := b.SpentUSD / b.LimitUSD * 100
	if pct < 75 {
		return nil, nil
	}
	return &SystemReminder{Type: AttachmentBudgetUSD, Content: fmt.Sprintf(
		"Budget usage: $%.2f of $%.2f (%.0f%%).", b.SpentUSD, b.LimitUSD, pct)}, nil
}
