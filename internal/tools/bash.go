package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/shell"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

const defaultBashTimeout = 2 * time.Minute

// BashTool runs a shell command, given as the "command" string and run
// through "sh -c". The schema also lists an "argv" array, but Execute
// does not read it: there is no direct, shell-free execution path and
// every call needs "command". A PTY flag is accepted for
// commands that need a pseudo-terminal (interactive CLIs); this
// implementation still executes them non-interactively but preserves
// the flag in the schema so a future PTY backend can switch on it.
type BashTool struct {
	tool.Base
	Background *shell.Store
}

func NewBashTool(reg *shell.Store) *BashTool {
	return &BashTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Bash",
			Description: "Run a shell command and return its combined stdout/stderr.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"command"},
				"properties": map[string]any{
					"command":           map[string]any{"type": "string"},
					"argv":              map[string]any{"type": "array"},
					"timeout_sec":       map[string]any{"type": "integer"},
					"pty":               map[string]any{"type": "boolean"},
					"run_in_background": map[string]any{"type": "boolean"},
				},
			},
			Concurrency:    protocol.Unsafe,
			MaxResultChars: 30_000,
		}},
		Background: reg,
	}
}

func (t *BashTool) CheckPermission(ctx *tool.Context, args map[string]any) protocol.PermissionResult {
	command := argString(args, "command")
	req := protocol.ApprovalRequest{
		RequestID:     ctx.CallID,
		ToolName:      "Bash",
		Description:   "run: " + command,
		AllowRemember: true,
		CachePrefix:   tool.ExtractPrefixPattern("Bash", args),
	}
	return protocol.NeedsApproval(req)
}

func (t *BashTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	command := argString(args, "command")
	if command == "" {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "command must not be empty")
	}
	timeoutSec := argInt(args, "timeout_sec", int(defaultBashTimeout.Seconds()))

	if argBool(args, "run_in_background") {
		if t.Background == nil {
			return protocol.ToolOutput{}, tool.NewError(status.Unsupported, "background execution is not available in this session")
		}
		id := t.Background.Start(ctx.WorkDir, command, time.Duration(timeoutSec)*time.Second)
		return protocol.TextOutput(fmt.Sprintf("started background shell %s", id)), nil
	}

	cmdCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
	cmd.Dir = ctx.WorkDir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	text := out.String()
	if err != nil {
		if cmdCtx.Err() != nil {
			return protocol.ToolOutput{}, tool.WrapError(status.Timeout, "command timed out", err)
		}
		return protocol.ErrorOutput(fmt.Sprintf("exit error: %v\n%s", err, text)), nil
	}
	return protocol.TextOutput(text), nil
}
