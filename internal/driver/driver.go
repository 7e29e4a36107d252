// Package driver implements the conversation driver: the turn-execution
// engine that assembles a prompt from history and pending input,
// injects system reminders, validates the result, streams it through a
// provider adapter, dispatches the tool calls the model requests, and
// loops until the model stops asking for tools. One Driver owns exactly
// one conversation's history; a sub-agent is just another Driver with
// its own history and a restricted tool surface.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/cocode/internal/history"
	"github.com/kadirpekel/cocode/internal/hook"
	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/provider"
	"github.com/kadirpekel/cocode/internal/reminder"
	"github.com/kadirpekel/cocode/internal/tool"
)

// Recorder receives turn/tool-call/reminder/hook events as a Driver
// executes them. All methods must tolerate a nil receiver's absence —
// callers check Config.Recorder == nil rather than guard every call
// site, so implementations are expected to be pointer types that are
// themselves nil-safe (see observability.Metrics).
type Recorder interface {
	TurnStarted(agentID string)
	TurnCompleted(agentID string, dur time.Duration, err error)
	ToolCallCompleted(toolName string, dur time.Duration, success bool)
	ReminderEmitted(tier string)
	HookDecision(event, decision string)
}

// Config is the per-conversation (or per-sub-agent) configuration a
// Driver is built with.
type Config struct {
	AgentID        string
	IsMainAgent    bool
	CWD            string
	ConversationID string
	SessionSource  string

	Provider string // key into the provider.Registry
	Model    string

	Instructions     string
	Parameters       protocol.ModelParameters
	ReasoningEffort  protocol.ThinkingLevel
	ReasoningSummary bool
	Verbosity        string

	// ToolNames restricts both the tool definitions sent to the
	// provider and the tools the executor will admit. Nil means every
	// registered, feature-enabled tool is available.
	ToolNames []string

	PlanMode bool
	PlanFile string

	AutoCompactTarget int

	// ReminderContext, if set, overrides the default GeneratorContext
	// builder (which only fills identity/plan-mode fields) with a
	// caller-supplied one that knows about changed files, background
	// tasks, diagnostics, todos and skills.
	ReminderContext func(gctx *reminder.GeneratorContext)

	// OnRemindersProduced, if set, is called after a reminder tier
	// actually produces a non-empty body, so the caller can mark
	// whatever backed an attachment (e.g. a background task store) as
	// notified and avoid reporting the same completion again next turn.
	OnRemindersProduced func(tier reminder.Tier, produced []reminder.AttachmentType)

	// Recorder, if set, receives turn/tool-call/reminder metrics. Nil
	// disables instrumentation entirely.
	Recorder Recorder
}

// Compactor summarizes tombstoned history once a turn's token usage
// crosses Config.AutoCompactTarget.
type Compactor interface {
	Compact(ctx context.Context, task CompactionTask) error
}

type toolDispatchInfo struct {
	name  string
	start time.Time
}

// CompactionTask is what the driver hands a Compactor.
type CompactionTask struct {
	ConversationID string
	Model          string
	History        *protocol.History
}

// Driver owns one conversation's history and drives it through turns.
// It is safe for one goroutine to call RunTurn at a time; SubmitInput
// and Cancel may be called concurrently with an in-flight turn.
type Driver struct {
	mu    sync.Mutex
	state State
	cfg   Config

	hist         *protocol.History
	pending      []protocol.ResponseItem
	lastResponse *history.LastResponse
	injectCount  int

	registry    *tool.Registry
	features    *tool.FeatureSet
	approval    *tool.ApprovalCache
	readTracker *tool.ReadTracker

	// toolDispatch tracks per-call name and start time between
	// dispatchToolCall (enqueue) and recordToolResults (completion), so
	// Recorder.ToolCallCompleted can report a name and duration despite
	// tool.CallResult carrying only a call ID.
	toolDispatch map[string]toolDispatchInfo

	adapters *provider.Registry

	reminders   *reminder.Orchestrator
	reminderCfg reminder.Config

	hooks    *hook.Point
	hookExec hook.ExecContext

	compactor Compactor

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// New constructs a Driver. adapters, registry, reminders and hooks are
// process-wide shared handles; approval/readTracker/compactor may be
// nil (a nil approval cache means tool calls that need approval always
// fail closed,
// a nil compactor means the auto-compact trigger is a no-op).
func New(
	adapters *provider.Registry,
	registry *tool.Registry,
	features *tool.FeatureSet,
	approval *tool.ApprovalCache,
	reminders *reminder.Orchestrator,
	reminderCfg reminder.Config,
	hooks *hook.Point,
	compactor Compactor,
	cfg Config,
) *Driver {
	return &Driver{
		state:        Idle,
		cfg:          cfg,
		hist:         protocol.NewHistory(),
		registry:     registry,
		features:     features,
		approval:     approval,
		readTracker:  tool.NewReadTracker(),
		adapters:     adapters,
		reminders:    reminders,
		reminderCfg:  reminderCfg,
		hooks:        hooks,
		hookExec:     hook.ExecContext{ProjectDir: cfg.CWD, SessionID: cfg.ConversationID},
		compactor:    compactor,
		toolDispatch: make(map[string]toolDispatchInfo),
	}
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// State reports the driver's current point in the turn state machine.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// History exposes the owned history for read-only inspection (e.g. by
// a transcript writer or the CLI's /compact command). Callers must not
// mutate the returned items.
func (d *Driver) History() *protocol.History { return d.hist }

// SubmitInput appends user-originated items to the pending queue and,
// if the driver is idle, nothing further is required: the caller is
// expected to invoke RunTurn next. Safe to call while a turn is
// in-flight; the items are picked up by the next prompt-assembly pass.
func (d *Driver) SubmitInput(items ...protocol.ResponseItem) {
	d.mu.Lock()
	d.pending = append(d.pending, items...)
	d.mu.Unlock()
}

// Cancel cooperatively aborts the in-flight turn, if any. It is
// idempotent and safe to call when the driver is idle.
func (d *Driver) Cancel() {
	d.cancelMu.Lock()
	defer d.cancelMu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Driver) setCancel(cancel context.CancelFunc) {
	d.cancelMu.Lock()
	d.cancel = cancel
	d.cancelMu.Unlock()
}

func (d *Driver) takePending() []protocol.ResponseItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.pending
	d.pending = nil
	return p
}

// RunTurn drives the conversation until the model stops requesting
// tools (or an error/cancellation interrupts it), per the algorithm in
// the conversation-driver specification: prompt assembly, reminder
// injection, validation, adapter streaming, tool dispatch and
// continuation, with a compaction trigger checked after each round.
// It returns the concatenated assistant text produced across every
// iteration of the loop.
func (d *Driver) RunTurn(ctx context.Context) (assistantText string, err error) {
	adapter, err := d.adapters.Get(d.cfg.Provider)
	if err != nil {
		return "", err
	}

	if d.cfg.Recorder != nil {
		d.cfg.Recorder.TurnStarted(d.cfg.AgentID)
		turnStart := time.Now()
		defer func() {
			d.cfg.Recorder.TurnCompleted(d.cfg.AgentID, time.Since(turnStart), err)
		}()
	}

	for {
		turnCtx, cancel := context.WithCancel(ctx)
		d.setCancel(cancel)
		text, toolResultCount, usage, roundErr := d.runOneRound(turnCtx, adapter)
		cancel()
		d.setCancel(nil)

		assistantText += text
		if roundErr != nil {
			d.setState(Idle)
			if turnCtx.Err() != nil {
				d.setState(Cancelling)
				d.setState(Idle)
			}
			err = roundErr
			return assistantText, err
		}

		if d.cfg.AutoCompactTarget > 0 && usage.InputTokens+usage.OutputTokens >= d.cfg.AutoCompactTarget {
			d.triggerCompaction(ctx)
		}

		if toolResultCount == 0 {
			d.runReminders(ctx, reminder.TierEndOfTurn)
			d.setState(Idle)
			return assistantText, nil
		}
		// Continuation: loop again without new user input.
	}
}

// runOneRound performs steps 1-6 of the turn algorithm once: assemble
// the prompt, stream one model response, and dispatch the tool calls it
// produced. toolResultCount > 0 tells RunTurn to loop without new input.
func (d *Driver) runOneRound(ctx context.Context, adapter provider.Adapter) (text string, toolResultCount int, usage protocol.Usage, err error) {
	d.setState(AssemblingPrompt)

	pendingSnapshot := d.takePending()
	fullHistory := d.hist.Snapshot(false)

	supportsIncremental := adapter.SupportsPreviousResponseID() && d.lastResponse != nil
	items, _ := history.BuildTurnInput(supportsIncremental, d.lastResponse, fullHistory, pendingSnapshot)
	for _, it := range pendingSnapshot {
		d.hist.Append(it)
	}
	normalized := history.NormalizeItemsForAPI(items, history.ForAPI())

	if hasUserMessage(pendingSnapshot) {
		normalized = append(normalized, d.runReminders(ctx, reminder.TierUserPrompt)...)
	}
	if d.injectCount == 0 {
		normalized = append(normalized, d.runReminders(ctx, reminder.TierTurnStart)...)
	}

	if verr := history.ValidateMessages(normalized); verr != nil {
		return "", 0, usage, verr
	}

	prompt := protocol.Prompt{
		Instructions:       d.cfg.Instructions,
		Input:              normalized,
		Tools:              d.toolSpecs(),
		PreviousResponseID: d.previousResponseID(supportsIncremental),
	}
	reqCtx := provider.RequestContext{
		ConversationID:   d.cfg.ConversationID,
		SessionSource:    d.cfg.SessionSource,
		Parameters:       d.cfg.Parameters,
		ReasoningEffort:  d.cfg.ReasoningEffort,
		ReasoningSummary: d.cfg.ReasoningSummary,
		Verbosity:        d.cfg.Verbosity,
		Model:            d.cfg.Model,
	}

	events, err := adapter.Stream(ctx, prompt, reqCtx, protocol.ProviderInfo{Name: d.cfg.Provider})
	if err != nil {
		return "", 0, usage, fmt.Errorf("driver: starting stream: %w", err)
	}

	d.setState(Streaming)
	executor := tool.NewExecutor(d.registry, d.executorConfig(), d.approval)
	toolCtx := d.toolContext(ctx)

	result, err := d.consumeStream(ctx, events, executor, toolCtx)
	if err != nil {
		return result.text, 0, result.usage, err
	}
	if result.responseID != "" {
		d.lastResponse = &history.LastResponse{ResponseID: result.responseID, HistoryLen: d.hist.Len()}
	}

	d.setState(DispatchingTools)
	executor.ExecutePendingUnsafe(toolCtx)
	toolResultCount = d.recordToolResults(ctx, executor.Drain())

	return result.text, toolResultCount, result.usage, nil
}

func hasUserMessage(items []protocol.ResponseItem) bool {
	for _, it := range items {
		if it.Kind == protocol.ItemUserMessage {
			return true
		}
	}
	return false
}

func (d *Driver) previousResponseID(supportsIncremental bool) string {
	if !supportsIncremental || d.lastResponse == nil {
		return ""
	}
	return d.lastResponse.ResponseID
}

func (d *Driver) toolSpecs() []protocol.ToolSpec {
	defs := d.registry.DefinitionsFiltered(d.features)
	allowed := toSet(d.cfg.ToolNames)
	specs := make([]protocol.ToolSpec, 0, len(defs))
	for _, def := range defs {
		if allowed != nil {
			if _, ok := allowed[def.Name]; !ok {
				continue
			}
		}
		specs = append(specs, protocol.ToolSpec{ToolDefinition: def, Variant: protocol.VariantFunction})
	}
	return specs
}

func toSet(names []string) map[string]struct{} {
	if names == nil {
		return nil
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func (d *Driver) executorConfig() tool.ExecutorConfig {
	cfg := tool.DefaultExecutorConfig()
	cfg.Features = d.features
	cfg.AllowedToolNames = toSet(d.cfg.ToolNames)
	return cfg
}

func (d *Driver) toolContext(ctx context.Context) *tool.Context {
	return &tool.Context{
		Context:     ctx,
		CallID:      uuid.NewString(),
		WorkDir:     d.cfg.CWD,
		PlanMode:    d.cfg.PlanMode,
		PlanFile:    d.cfg.PlanFile,
		SessionID:   d.cfg.ConversationID,
		ReadTracker: d.readTracker,
	}
}

func (d *Driver) triggerCompaction(ctx context.Context) {
	if d.compactor == nil {
		return
	}
	d.setState(Compacting)
	task := CompactionTask{ConversationID: d.cfg.ConversationID, Model: d.cfg.Model, History: d.hist}
	go func() {
		_ = d.compactor.Compact(ctx, task)
	}()
	d.setState(Idle)
}
