package hook

import (
	"context"
	"path/filepath"
	"sync"
)

// Effects is the cumulative, merged result of running every matching
// hook for one event: an aggregate approval/block verdict plus any
// mutations hooks requested.
type Effects struct {
	Approved    bool
	Blocked     bool
	BlockedBy   string
	Sandbox     string
	Command     string
	Env         map[string]string
	Metadata    map[string]any
	Logs        []string
	NonBlocking []string
	CachedKeys  []string
}

// Point runs every Definition registered for one Event, either in
// parallel (the default, since most hooks are independent observers)
// or sequentially when a hook's mutation needs to be visible to the
// next one (PreToolUse command/env rewriting).
type Point struct {
	mu   sync.Mutex
	defs map[Event][]Definition
}

func NewPoint() *Point {
	return &Point{defs: make(map[Event][]Definition)}
}

func (p *Point) Register(def Definition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defs[def.Event] = append(p.defs[def.Event], def)
}

// matches reports whether a tool name satisfies a hook's matcher glob;
// an empty matcher matches every tool.
func matches(matcher, toolName string) bool {
	if matcher == "" {
		return true
	}
	ok, err := filepath.Match(matcher, toolName)
	return err == nil && ok
}

// sequentialEvents run their hooks one at a time so a mutation (a
// rewritten command, an injected env var) from one hook is visible to
// the input the next hook receives.
var sequentialEvents = map[Event]bool{
	EventPreToolUse: true,
}

// Dispatch runs every registered, matcher-satisfying hook for in.Event
// and merges their decisions into one Effects value under a write
// lock, so concurrent PostToolUse/Notification hooks can't race each
// other's writes to the aggregate result.
func (p *Point) Dispatch(ctx context.Context, execCtx ExecContext, in Input) (Effects, error) {
	p.mu.Lock()
	defs := append([]Definition(nil), p.defs[in.Event]...)
	p.mu.Unlock()

	var applicable []Definition
	for _, d := range defs {
		if matches(d.Matcher, in.ToolName) {
			applicable = append(applicable, d)
		}
	}
	if len(applicable) == 0 {
		return Effects{Approved: true}, nil
	}

	eff := Effects{Approved: true, Env: map[string]string{}, Metadata: map[string]any{}}
	var effMu sync.Mutex

	apply := func(d *Decision) {
		if d == nil {
			return
		}
		effMu.Lock()
		defer effMu.Unlock()
		if d.Blocked && !eff.Blocked {
			eff.Blocked = true
			eff.Approved = false
			eff.BlockedBy = d.Reason
		}
		if d.Sandbox != "" {
			eff.Sandbox = d.Sandbox
		}
		if d.MutatedCmd != "" {
			eff.Command = d.MutatedCmd
			in.ToolInput["command"] = d.MutatedCmd
		}
		for k, v := range d.MutatedEnv {
			eff.Env[k] = v
		}
		for k, v := range d.Metadata {
			eff.Metadata[k] = v
		}
		if d.Log != "" {
			eff.Logs = append(eff.Logs, d.Log)
		}
		if d.NonBlockingErr != "" {
			eff.NonBlocking = append(eff.NonBlocking, d.NonBlockingErr)
		}
		if d.CacheDecision {
			eff.CachedKeys = append(eff.CachedKeys, in.ToolName)
		}
	}

	if sequentialEvents[in.Event] {
		for _, d := range applicable {
			decision, err := Run(ctx, execCtx, d, in)
			if err != nil {
				return eff, err
			}
			apply(decision)
			if eff.Blocked {
				break
			}
		}
		return eff, nil
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(applicable))
	for _, d := range applicable {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := Run(ctx, execCtx, d, in)
			if err != nil {
				errCh <- err
				return
			}
			apply(decision)
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return eff, err
		}
	}
	return eff, nil
}
