package hook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CommandExitZeroApprovesByDefault(t *testing.T) {
	def := Definition{Event: EventPreToolUse, Action: Command{Run: "true"}}
	d, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventPreToolUse})
	require.NoError(t, err)
	assert.True(t, d.Approved)
	assert.False(t, d.Blocked)
}

func TestRun_CommandExitTwoBlocksWithStderrReason(t *testing.T) {
	def := Definition{Event: EventPreToolUse, Action: Command{Run: "echo 'not allowed' 1>&2; exit 2"}}
	d, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventPreToolUse})
	require.NoError(t, err)
	assert.True(t, d.Blocked)
	assert.Equal(t, "not allowed", d.Reason)
}

func TestRun_CommandOtherExitIsNonBlocking(t *testing.T) {
	def := Definition{Event: EventPostToolUse, Action: Command{Run: "echo boom 1>&2; exit 1"}}
	d, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventPostToolUse})
	require.NoError(t, err)
	assert.False(t, d.Blocked)
	assert.Contains(t, d.NonBlockingErr, "boom")
}

func TestRun_CommandParsesHookResultJSON(t *testing.T) {
	def := Definition{Event: EventPreToolUse, Action: Command{Run: `echo '{"decision":"block","reason":"no rm -rf"}'`}}
	d, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventPreToolUse})
	require.NoError(t, err)
	assert.True(t, d.Blocked)
	assert.Equal(t, "no rm -rf", d.Reason)
}

func TestRun_CommandParsesHookOutputJSON(t *testing.T) {
	def := Definition{Event: EventStop, Action: Command{Run: `echo '{"continue": false, "stopReason": "done early"}'`}}
	d, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventStop})
	require.NoError(t, err)
	assert.True(t, d.Blocked)
	assert.Equal(t, "done early", d.Reason)
}

func TestRun_CommandReceivesInputOnStdin(t *testing.T) {
	def := Definition{Event: EventPreToolUse, Action: Command{Run: `cat > /dev/null; exit 0`}}
	_, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventPreToolUse, ToolName: "Bash"})
	require.NoError(t, err)
}

func TestRun_CommandRespectsTimeout(t *testing.T) {
	def := Definition{Event: EventStop, Action: Command{Run: "sleep 5"}, Timeout: 50 * time.Millisecond}
	_, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventStop})
	assert.Error(t, err)
}

func TestRun_NativeActionRunsInProcess(t *testing.T) {
	called := false
	def := Definition{Event: EventSessionStart, Action: Native{Fn: func(ctx ExecContext, in Input) (*Decision, error) {
		called = true
		return &Decision{Approved: true}, nil
	}}}
	d, err := Run(context.Background(), ExecContext{}, def, Input{Event: EventSessionStart})
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, d.Approved)
}

func TestIsValidEvent(t *testing.T) {
	assert.True(t, IsValidEvent(EventPreCompact))
	assert.False(t, IsValidEvent(Event("NotARealEvent")))
}
