// Package subagent implements spawning, tool-filtering, and
// foreground/background execution of child agents, isolated from the
// parent's history and tool allow-list beyond the three-tier filter.
package subagent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// alwaysBlocked tools prevent a sub-agent from recursing into further
// sub-agents or hijacking the main agent's planning surface.
var alwaysBlocked = map[string]struct{}{
	"Task":       {},
	"TaskOutput": {},
	"WriteTodos": {},
}

// nonBuiltinBlocked tools are withheld from any agent defined outside
// the built-in set — a user-authored agent cannot mutate the workspace
// or shell.
var nonBuiltinBlocked = map[string]struct{}{
	"Write":        {},
	"Bash":         {},
	"NotebookEdit": {},
	"Edit":         {},
}

// AsyncSafeTools is consulted only in async (background) mode, where
// the tool surface is further restricted to read-only or
// background-safe tools.
var AsyncSafeTools = map[string]struct{}{
	"Read":       {},
	"Grep":       {},
	"Glob":       {},
	"ListDir":    {},
	"WebFetch":   {},
	"Think":      {},
	"TaskOutput": {},
}

// SpawnConfig describes a sub-agent invocation.
type SpawnConfig struct {
	Model            string
	Prompt           string
	Tools            []string
	MaxTurns         int
	RunInBackground  bool
	AllowedTools     []string
	DisallowedTools  []string
	ResumeFrom       string
	ParentSelections map[string]any
	IsBuiltinAgent   bool
}

// EffectiveTools applies the three-tier filter described in §4.7: no
// intersection with the parent's own allow-list is performed — the
// child's surface is defined solely by its own definition plus these
// tier constraints.
func EffectiveTools(cfg SpawnConfig) []string {
	disallow := make(map[string]struct{}, len(cfg.DisallowedTools))
	for _, d := range cfg.DisallowedTools {
		disallow[d] = struct{}{}
	}

	var out []string
	for _, t := range cfg.Tools {
		if _, blocked := alwaysBlocked[t]; blocked {
			continue
		}
		if !cfg.IsBuiltinAgent {
			if _, blocked := nonBuiltinBlocked[t]; blocked {
				continue
			}
		}
		if _, blocked := disallow[t]; blocked {
			continue
		}
		if cfg.RunInBackground {
			if _, safe := AsyncSafeTools[t]; !safe {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Runner executes one sub-agent turn to completion and returns its
// final text output. It is the seam a conversation driver plugs into;
// subagent itself has no opinion on how a turn loop is structured.
type Runner interface {
	Run(ctx context.Context, model, prompt string, tools []string, resumeFrom string) (string, error)
}

// Result is the durable record a background agent writes to its output
// file, and what TaskOutput parses back.
type Result struct {
	Status string `json:"status"` // "running", "completed", "failed"
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Manager spawns sub-agents, tracks background ones for TaskOutput
// polling, and wires their cancellation to TaskStop / session cancel.
type Manager struct {
	runner    Runner
	outputDir string

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewManager(runner Runner, outputDir string) *Manager {
	return &Manager{runner: runner, outputDir: outputDir, cancels: make(map[string]context.CancelFunc)}
}

// Spawn starts a sub-agent. In foreground mode it blocks until the
// agent completes and returns its output text directly. In background
// mode it returns the fresh agent_id immediately; the caller polls
// TaskOutput's backing file.
func (m *Manager) Spawn(ctx context.Context, cfg SpawnConfig) (agentID string, output string, err error) {
	agentID = "agent_" + uuid.NewString()
	tools := EffectiveTools(cfg)

	if !cfg.RunInBackground {
		out, runErr := m.runner.Run(ctx, cfg.Model, cfg.Prompt, tools, cfg.ResumeFrom)
		return agentID, out, runErr
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancels[agentID] = cancel
	m.mu.Unlock()

	m.writeResult(agentID, Result{Status: "running"})

	go func() {
		defer cancel()
		out, runErr := m.runner.Run(runCtx, cfg.Model, cfg.Prompt, tools, cfg.ResumeFrom)
		if runErr != nil {
			m.writeResult(agentID, Result{Status: "failed", Error: runErr.Error()})
			return
		}
		m.writeResult(agentID, Result{Status: "completed", Output: out})
	}()

	return agentID, "", nil
}

// Stop cancels a background agent's context if it is still running.
func (m *Manager) Stop(agentID string) bool {
	m.mu.Lock()
	cancel, ok := m.cancels[agentID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// Poll reads the durable output file for a background agent. found is
// false when the output directory holds no readable result for agentID;
// foreground agents never write one.
func (m *Manager) Poll(agentID string) (result Result, found bool) {
	path := m.resultPath(agentID)
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal(content, &r); err != nil {
		return Result{}, false
	}
	return r, true
}

func (m *Manager) writeResult(agentID string, r Result) {
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return
	}
	content, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = os.WriteFile(m.resultPath(agentID), content, 0o644)
}

func (m *Manager) resultPath(agentID string) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("%s.jsonl", agentID))
}
