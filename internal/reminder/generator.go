package reminder

import "context"

// Generator produces at most one SystemReminder for a given tier. A
// nil result with a nil error means the generator had nothing to say
// this turn.
type Generator interface {
	Name() string
	AttachmentType() AttachmentType
	Tier() Tier
	IsEnabled(cfg Config) bool
	Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error)
}
