package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// GrepTool shells out to ripgrep. It falls back to a plain-text
// substring scan when rg is not on PATH, so the tool degrades rather
// than failing outright in a minimal environment.
type GrepTool struct {
	tool.Base
	Timeout time.Duration
}

func NewGrepTool() *GrepTool {
	return &GrepTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Grep",
			Description: "Search file contents for a regular expression pattern, ripgrep-backed.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"pattern"},
				"properties": map[string]any{
					"pattern":          map[string]any{"type": "string"},
					"path":             map[string]any{"type": "string"},
					"glob":             map[string]any{"type": "string"},
					"case_insensitive": map[string]any{"type": "boolean"},
					"max_results":      map[string]any{"type": "integer"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 50_000,
		}},
		Timeout: 30 * time.Second,
	}
}

func (t *GrepTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	pattern := argString(args, "pattern")
	searchPath := argString(args, "path")
	if searchPath == "" {
		searchPath = "."
	}
	globPattern := argString(args, "glob")
	maxResults := argInt(args, "max_results", 200)

	cmdCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	rgArgs := []string{"--line-number", "--no-heading", "--color=never"}
	if argBool(args, "case_insensitive") {
		rgArgs = append(rgArgs, "-i")
	}
	if globPattern != "" {
		rgArgs = append(rgArgs, "--glob", globPattern)
	}
	rgArgs = append(rgArgs, "--max-count", strconv.Itoa(maxResults), pattern, searchPath)

	cmd := exec.CommandContext(cmdCtx, "rg", rgArgs...)
	cmd.Dir = ctx.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return protocol.TextOutput("no matches"), nil
		}
		if _, lookErr := exec.LookPath("rg"); lookErr != nil {
			return t.fallbackScan(ctx, pattern, searchPath, maxResults)
		}
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "rg failed: "+stderr.String(), err)
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) > maxResults {
		lines = lines[:maxResults]
	}
	out := strings.Join(lines, "\n")
	if out == "" {
		out = "no matches"
	}
	return protocol.TextOutput(fmt.Sprintf("%d match(es)\n%s", len(lines), out)), nil
}

// fallbackScan is a degraded substring search used only when ripgrep is
// unavailable; it is not a regex engine.
func (t *GrepTool) fallbackScan(ctx *tool.Context, needle, root string, maxResults int) (protocol.ToolOutput, error) {
	var matches []string
	err := walkFiles(ctx.WorkDir, root, func(relPath string, content []byte) {
		for i, line := range strings.Split(string(content), "\n") {
			if len(matches) >= maxResults {
				return
			}
			if strings.Contains(line, needle) {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", relPath, i+1, line))
			}
		}
	})
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "fallback scan failed", err)
	}
	if len(matches) == 0 {
		return protocol.TextOutput("no matches"), nil
	}
	return protocol.TextOutput(fmt.Sprintf("%d match(es)\n%s", len(matches), strings.Join(matches, "\n"))), nil
}
