package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	name    string
	typ     AttachmentType
	tier    Tier
	enabled bool
	content string
}

func (f fakeGenerator) Name() string                   { return f.name }
func (f fakeGenerator) AttachmentType() AttachmentType { return f.typ }
func (f fakeGenerator) Tier() Tier                     { return f.tier }
func (f fakeGenerator) IsEnabled(cfg Config) bool      { return f.enabled }
func (f fakeGenerator) Generate(ctx context.Context, gctx *GeneratorContext) (*SystemReminder, error) {
	if f.content == "" {
		return nil, nil
	}
	return &SystemReminder{Type: f.typ, Content: f.content}, nil
}

func TestOrchestrator_ConcatenatesEnabledGeneratorsForTier(t *testing.T) {
	o := NewOrchestrator(
		fakeGenerator{name: "a", typ: AttachmentCriticalInstruction, tier: TierTurnStart, enabled: true, content: "alpha"},
		fakeGenerator{name: "b", typ: AttachmentSecurityGuidelines, tier: TierTurnStart, enabled: true, content: "beta"},
		fakeGenerator{name: "c", typ: AttachmentTodoReminders, tier: TierEndOfTurn, enabled: true, content: "gamma"},
	)
	gctx := &GeneratorContext{Config: DefaultConfig()}
	res, err := o.Run(context.Background(), gctx, TierTurnStart)
	require.NoError(t, err)
	assert.Contains(t, res.Body, "alpha")
	assert.Contains(t, res.Body, "beta")
	assert.NotContains(t, res.Body, "gamma")
	assert.Len(t, res.Produced, 2)
}

func TestOrchestrator_SkipsDisabledGenerators(t *testing.T) {
	o := NewOrchestrator(
		fakeGenerator{name: "a", typ: AttachmentCriticalInstruction, tier: TierTurnStart, enabled: false, content: "alpha"},
	)
	gctx := &GeneratorContext{Config: DefaultConfig()}
	res, err := o.Run(context.Background(), gctx, TierTurnStart)
	require.NoError(t, err)
	assert.Empty(t, res.Body)
}

func TestOrchestrator_SkipsGeneratorsThatProduceNothing(t *testing.T) {
	o := NewOrchestrator(
		fakeGenerator{name: "a", typ: AttachmentCriticalInstruction, tier: TierTurnStart, enabled: true, content: ""},
	)
	gctx := &GeneratorContext{Config: DefaultConfig()}
	res, err := o.Run(context.Background(), gctx, TierTurnStart)
	require.NoError(t, err)
	assert.Empty(t, res.Body)
	assert.Empty(t, res.Produced)
}

func TestOrchestrator_DisabledConfigProducesNothing(t *testing.T) {
	o := NewOrchestrator(
		fakeGenerator{name: "a", typ: AttachmentCriticalInstruction, tier: TierTurnStart, enabled: true, content: "alpha"},
	)
	cfg := DefaultConfig()
	cfg.Enabled = false
	gctx := &GeneratorContext{Config: cfg}
	res, err := o.Run(context.Background(), gctx, TierTurnStart)
	require.NoError(t, err)
	assert.Empty(t, res.Body)
}
