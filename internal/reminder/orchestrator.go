package reminder

import (
	"context"
	"strings"
	"time"
)

// Orchestrator runs every registered Generator whose tier and enabled
// flag match, under a per-generator timeout, and concatenates their
// output into one combined reminder body.
type Orchestrator struct {
	generators []Generator
}

func NewOrchestrator(generators ...Generator) *Orchestrator {
	return &Orchestrator{generators: generators}
}

// Result is what one orchestrator pass produced.
type Result struct {
	// Body is the combined reminder text, ready to be wrapped in a
	// synthetic tool-use/tool-result pair and spliced into history.
	Body string
	// Produced lists which attachment types actually emitted content,
	// so the caller can mark e.g. background tasks as notified.
	Produced []AttachmentType
}

// Run executes every generator registered for tier, in registration
// order, skipping disabled ones. A generator that errors or times out
// is silently skipped rather than failing the whole pass; one slow
// or broken generator must never block the turn.
func (o *Orchestrator) Run(ctx context.Context, gctx *GeneratorContext, tier Tier) (Result, error) {
	if !gctx.Config.Enabled {
		return Result{}, nil
	}
	timeout := gctx.Config.TimeoutPerGenerator
	if timeout <= 0 {
		timeout = time.Second
	}

	var parts []string
	var produced []AttachmentType
	for _, g := range o.generators {
		if g.Tier() != tier || !g.IsEnabled(gctx.Config) {
			continue
		}
		reminder, err := runOne(ctx, g, gctx, timeout)
		if err != nil || reminder == nil {
			continue
		}
		parts = append(parts, reminder.Content)
		produced = append(produced, reminder.Type)
	}
	if len(parts) == 0 {
		return Result{}, nil
	}
	return Result{Body: strings.Join(parts, "\n\n"), Produced: produced}, nil
}

func runOne(ctx context.Context, g Generator, gctx *GeneratorContext, timeout time.Duration) (*SystemReminder, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type res struct {
		r   *SystemReminder
		err error
	}
	ch := make(chan res, 1)
	go func() {
		r, err := g.Generate(cctx, gctx)
		ch <- res{r, err}
	}()

	select {
	case out := <-ch:
		return out.r, out.err
	case <-cctx.Done():
		return nil, cctx.Err()
	}
}
