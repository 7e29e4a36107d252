package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
)

// ExecutorConfig tunes the scheduler. AllowedToolNames, when non-nil,
// restricts admission to the named tools regardless of what's
// registered; a nil set allows every registered tool.
type ExecutorConfig struct {
	Features         *FeatureSet
	AllowedToolNames map[string]struct{}
	MaxConcurrent    int
}

func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{MaxConcurrent: 8}
}

// CallResult pairs a dispatched call's ID with its outcome.
type CallResult struct {
	CallID string
	Output protocol.ToolOutput
	Err    error
}

// Executor admits Safe tool calls to run immediately (bounded by
// MaxConcurrent) while holding Unsafe calls in a pending queue,
// preserving the model's emission order for both admission and, for
// Unsafe calls, execution.
type Executor struct {
	registry *Registry
	cfg      ExecutorConfig
	approval *ApprovalCache

	mu      sync.Mutex
	active  int
	pending []pendingCall
	results []CallResult
	wg      sync.WaitGroup
	resMu   sync.Mutex
	sem     chan struct{}
}

type pendingCall struct {
	call protocol.ToolCall
	args map[string]any
}

func NewExecutor(registry *Registry, cfg ExecutorConfig, approval *ApprovalCache) *Executor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	return &Executor{
		registry: registry,
		cfg:      cfg,
		approval: approval,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
	}
}

func (e *Executor) allowed(name string) bool {
	if e.cfg.AllowedToolNames == nil {
		return true
	}
	_, ok := e.cfg.AllowedToolNames[name]
	return ok
}

// OnToolComplete is called as the model finishes streaming one function
// call's arguments. Safe, allowed, feature-enabled calls are admitted to
// run immediately; everything else — Unsafe calls, and calls rejected at
// admission — is queued, so rejection errors surface through the same
// Drain/ExecutePendingUnsafe path a real execution would.
func (e *Executor) OnToolComplete(ctx *Context, call protocol.ToolCall, args map[string]any) {
	t, err := e.registry.Get(call.Name)
	if err != nil || !e.allowed(call.Name) || !e.cfg.featuresAllow(t) {
		e.enqueuePending(call, args)
		return
	}

	if t.Definition().Concurrency == protocol.Unsafe {
		e.enqueuePending(call, args)
		return
	}

	e.mu.Lock()
	e.active++
	e.mu.Unlock()

	e.wg.Add(1)
	e.sem <- struct{}{}
	go func() {
		defer e.wg.Done()
		defer func() { <-e.sem }()
		out, runErr := e.run(ctx, t, call, args)
		e.appendResult(CallResult{CallID: call.ID, Output: out, Err: runErr})
	}()
}

func (cfg ExecutorConfig) featuresAllow(t Tool) bool {
	if t == nil || cfg.Features == nil {
		return true
	}
	return cfg.Features.IsEnabled(t.Definition().FeatureGate)
}

func (e *Executor) enqueuePending(call protocol.ToolCall, args map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, pendingCall{call: call, args: args})
}

// ExecutePendingUnsafe runs every queued call serially, in the order
// they were queued, once the model's stream has completed.
func (e *Executor) ExecutePendingUnsafe(ctx *Context) {
	e.mu.Lock()
	batch := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, p := range batch {
		t, err := e.registry.Get(p.call.Name)
		if err != nil {
			e.appendResult(CallResult{
				CallID: p.call.ID,
				Err:    NewError(status.Unsupported, fmt.Sprintf("tool %q: not found", p.call.Name)),
			})
			continue
		}
		if !e.allowed(p.call.Name) {
			e.appendResult(CallResult{
				CallID: p.call.ID,
				Err:    NewError(status.Unsupported, fmt.Sprintf("tool %q: not found", p.call.Name)),
			})
			continue
		}
		if !e.cfg.featuresAllow(t) {
			e.appendResult(CallResult{
				CallID: p.call.ID,
				Err:    NewError(status.Unsupported, fmt.Sprintf("tool %q: not found", p.call.Name)),
			})
			continue
		}
		out, err := e.run(ctx, t, p.call, p.args)
		e.appendResult(CallResult{CallID: p.call.ID, Output: out, Err: err})
	}
}

// run executes the full five-stage pipeline for one admitted call.
func (e *Executor) run(ctx *Context, t Tool, call protocol.ToolCall, args map[string]any) (protocol.ToolOutput, error) {
	defer t.Cleanup(ctx)

	if v := t.Validate(ctx, args); !v.IsValid() {
		msgs := make([]string, 0, len(v.Errors))
		for _, verr := range v.Errors {
			msgs = append(msgs, verr.Message)
		}
		return protocol.ToolOutput{}, NewError(status.InvalidArguments, strings.Join(msgs, "; "))
	}

	perm := t.CheckPermission(ctx, args)
	switch perm.Outcome {
	case protocol.PermissionDenied:
		return protocol.ToolOutput{}, NewError(status.PermissionDenied, perm.Reason)
	case protocol.PermissionNeedsApproval:
		if e.approval == nil || perm.Request == nil {
			return protocol.ToolOutput{}, NewError(status.PermissionDenied, "approval required but no approval cache configured")
		}
		if !e.approval.IsApproved(*perm.Request) {
			return protocol.ToolOutput{}, NewError(status.PermissionDenied, "awaiting approval: "+perm.Request.Description)
		}
	case protocol.PermissionAllowed, protocol.PermissionPassthrough:
		// proceed
	}

	out, err := t.Execute(ctx, args)
	if err != nil {
		return protocol.ToolOutput{}, err
	}

	out = t.PostProcess(ctx, out)

	if max := t.Definition().MaxResultChars; max > 0 {
		out = out.TruncateTo(max)
	}

	return out, nil
}

func (e *Executor) appendResult(r CallResult) {
	e.resMu.Lock()
	defer e.resMu.Unlock()
	e.results = append(e.results, r)
}

// Drain waits for every admitted Safe call to finish and returns all
// results accumulated so far (Safe and, if ExecutePendingUnsafe has
// already run, Unsafe), clearing the internal buffer.
func (e *Executor) Drain() []CallResult {
	e.wg.Wait()
	e.resMu.Lock()
	defer e.resMu.Unlock()
	out := e.results
	e.results = nil
	return out
}

func (e *Executor) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Executor) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// ExtractPrefixPattern derives the approval-cache prefix for a Bash
// command: the first whitespace-delimited word plus " *", e.g.
// "git push origin main" -> "git *". Returns "" for non-Bash tools,
// missing, or blank commands.
func ExtractPrefixPattern(toolName string, args map[string]any) string {
	if toolName != "Bash" {
		return ""
	}
	cmd, _ := args["command"].(string)
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ""
	}
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0] + " *"
}
