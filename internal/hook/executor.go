package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Run executes one Definition against in and returns the normalized
// Decision. Command actions are spawned as subprocesses the way
// tools.CommandTool runs shell commands (exec.CommandContext, a
// bounded timeout, exit-code inspection via *exec.ExitError); Native
// actions run in-process.
func Run(ctx context.Context, execCtx ExecContext, def Definition, in Input) (*Decision, error) {
	switch action := def.Action.(type) {
	case Command:
		timeout := def.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		return runCommand(ctx, execCtx, action, in, timeout)
	case Native:
		return action.Fn(execCtx, in)
	default:
		return nil, fmt.Errorf("hook: unknown action type %T", def.Action)
	}
}

func runCommand(ctx context.Context, execCtx ExecContext, action Command, in Input, timeout time.Duration) (*Decision, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("hook: marshaling input: %w", err)
	}

	cmd := exec.CommandContext(cctx, "sh", "-c", action.Run)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Env,
		"CLAUDE_PROJECT_DIR="+execCtx.ProjectDir,
		"CLAUDE_SESSION_ID="+execCtx.SessionID,
		"HOOK_EVENT="+string(in.Event),
		"HOOK_TOOL_NAME="+in.ToolName,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if cctx.Err() != nil {
		return nil, fmt.Errorf("hook: running %q: %w", action.Run, cctx.Err())
	}
	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("hook: running %q: %w", action.Run, runErr)
		}
	}

	return decideFromExit(exitCode, stdout.Bytes(), stderr.String())
}

// decideFromExit applies the standard hook exit-code protocol: 0 means
// success (parse stdout for a decision), 2 means block (stderr is the
// reason), anything else is a non-blocking error to log.
func decideFromExit(exitCode int, stdout []byte, stderr string) (*Decision, error) {
	switch exitCode {
	case 0:
		return parseHookOutput(stdout)
	case 2:
		return &Decision{Blocked: true, Reason: strings.TrimSpace(stderr)}, nil
	default:
		return &Decision{NonBlockingErr: fmt.Sprintf("hook exited %d: %s", exitCode, strings.TrimSpace(stderr))}, nil
	}
}

// parseHookOutput accepts either the "HookResult" or "HookOutput" JSON
// shape on stdout and normalizes both into a Decision. Empty/unparsable
// stdout on a zero exit is treated as silent approval.
func parseHookOutput(stdout []byte) (*Decision, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return &Decision{Approved: true}, nil
	}

	var asResult rawHookResult
	if err := json.Unmarshal(trimmed, &asResult); err == nil && asResult.Decision != "" {
		d := &Decision{
			Reason:        asResult.Reason,
			Sandbox:       asResult.Sandbox,
			MutatedCmd:    asResult.UpdatedCommand,
			MutatedEnv:    asResult.UpdatedEnv,
			Metadata:      asResult.Metadata,
			CacheDecision: asResult.Cache,
		}
		switch strings.ToLower(asResult.Decision) {
		case "block", "deny":
			d.Blocked = true
		default:
			d.Approved = true
		}
		return d, nil
	}

	var asOutput rawHookOutput
	if err := json.Unmarshal(trimmed, &asOutput); err == nil {
		d := &Decision{
			Approved: asOutput.Continue,
			Blocked:  !asOutput.Continue,
			Reason:   asOutput.StopReason,
		}
		if len(asOutput.HookSpecificOutput) > 0 {
			d.Metadata = asOutput.HookSpecificOutput
		}
		return d, nil
	}

	// Stdout that isn't valid JSON in either shape is treated as a plain
	// approval with the raw text logged, matching the protocol's
	// tolerance for hooks that just print status information.
	return &Decision{Approved: true, Log: string(trimmed)}, nil
}
