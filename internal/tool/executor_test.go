package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/protocol"
)

type safeTool struct{ Base }

func newSafeTool() *safeTool {
	return &safeTool{Base{Def: protocol.ToolDefinition{Name: "safe_tool", Concurrency: protocol.Safe}}}
}

func (t *safeTool) Execute(_ *Context, _ map[string]any) (protocol.ToolOutput, error) {
	return protocol.TextOutput("safe result"), nil
}

type unsafeTool struct{ Base }

func newUnsafeTool() *unsafeTool {
	return &unsafeTool{Base{Def: protocol.ToolDefinition{Name: "unsafe_tool", Concurrency: protocol.Unsafe}}}
}

func (t *unsafeTool) Execute(_ *Context, _ map[string]any) (protocol.ToolOutput, error) {
	return protocol.TextOutput("unsafe result"), nil
}

type gatedTool struct{ Base }

func newGatedTool() *gatedTool {
	return &gatedTool{Base{Def: protocol.ToolDefinition{Name: "gated_tool", FeatureGate: "ls"}}}
}

func (t *gatedTool) Execute(_ *Context, _ map[string]any) (protocol.ToolOutput, error) {
	return protocol.TextOutput("gated result"), nil
}

func testContext() *Context {
	return &Context{Context: context.Background()}
}

func TestExecutor_SafeToolStartsImmediately(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newSafeTool())
	exec := NewExecutor(reg, DefaultExecutorConfig(), nil)

	exec.OnToolComplete(testContext(), protocol.ToolCall{ID: "call-1", Name: "safe_tool"}, map[string]any{})

	results := exec.Drain()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 0, exec.PendingCount())
}

func TestExecutor_UnsafeToolIsQueuedThenRunsOnExecutePending(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newUnsafeTool())
	exec := NewExecutor(reg, DefaultExecutorConfig(), nil)

	exec.OnToolComplete(testContext(), protocol.ToolCall{ID: "call-1", Name: "unsafe_tool"}, map[string]any{})
	assert.Equal(t, 0, exec.ActiveCount())
	assert.Equal(t, 1, exec.PendingCount())

	exec.ExecutePendingUnsafe(testContext())
	results := exec.Drain()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestExecutor_FeatureGatedToolRejectedWhenDisabled(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newGatedTool())
	features := NewFeatureSet()
	features.Disable("ls")
	cfg := ExecutorConfig{Features: features, MaxConcurrent: 8}
	exec := NewExecutor(reg, cfg, nil)

	exec.OnToolComplete(testContext(), protocol.ToolCall{ID: "call-1", Name: "gated_tool"}, map[string]any{})
	exec.ExecutePendingUnsafe(testContext())

	results := exec.Drain()
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

func TestExecutor_UnknownToolNameIsQueuedThenFails(t *testing.T) {
	reg := NewRegistry()
	exec := NewExecutor(reg, DefaultExecutorConfig(), nil)

	exec.OnToolComplete(testContext(), protocol.ToolCall{ID: "call-1", Name: "nonexistent"}, map[string]any{})
	assert.Equal(t, 1, exec.PendingCount())

	exec.ExecutePendingUnsafe(testContext())
	results := exec.Drain()
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

func TestExecutor_AllowlistRejectsUnlistedTool(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newSafeTool())
	reg.Register(newUnsafeTool())
	cfg := ExecutorConfig{AllowedToolNames: map[string]struct{}{"safe_tool": {}}, MaxConcurrent: 8}
	exec := NewExecutor(reg, cfg, nil)

	exec.OnToolComplete(testContext(), protocol.ToolCall{ID: "call-1", Name: "safe_tool"}, map[string]any{})
	exec.OnToolComplete(testContext(), protocol.ToolCall{ID: "call-2", Name: "unsafe_tool"}, map[string]any{})
	exec.ExecutePendingUnsafe(testContext())

	results := exec.Drain()
	require.Len(t, results, 2)

	byID := map[string]CallResult{}
	for _, r := range results {
		byID[r.CallID] = r
	}
	assert.NoError(t, byID["call-1"].Err)
	assert.Error(t, byID["call-2"].Err)
}

func TestExtractPrefixPattern(t *testing.T) {
	cases := []struct {
		tool string
		cmd  string
		want string
	}{
		{"Bash", "git push origin main", "git *"},
		{"Bash", "ls", "ls *"},
		{"Bash", "cargo test --no-fail-fast -- -q", "cargo *"},
		{"Bash", "", ""},
		{"Bash", "   ", ""},
		{"Read", "git push", ""},
	}
	for _, c := range cases {
		got := ExtractPrefixPattern(c.tool, map[string]any{"command": c.cmd})
		assert.Equal(t, c.want, got, c.cmd)
	}
	assert.Equal(t, "", ExtractPrefixPattern("Bash", map[string]any{"file_path": "/tmp/test"}))
}
