package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolOutput_TruncateTo(t *testing.T) {
	out := TextOutput("0123456789")
	truncated := out.TruncateTo(4)
	assert.True(t, truncated.Truncated)
	assert.Contains(t, truncated.TextOf(), "0123")
	assert.Contains(t, truncated.TextOf(), "truncated")
}

func TestToolOutput_TruncateTo_NoOpWhenUnderCap(t *testing.T) {
	out := TextOutput("short")
	truncated := out.TruncateTo(100)
	assert.False(t, truncated.Truncated)
	assert.Equal(t, "short", truncated.TextOf())
}

func TestToolOutput_WithFileRead(t *testing.T) {
	out := TextOutput("file contents").WithFileRead("/a/b.go", "file contents", "deadbeef")
	require := assert.New(t)
	require.Len(out.Modifiers, 1)
	require.Equal(ModifierFileRead, out.Modifiers[0].Kind)
	require.Equal("/a/b.go", out.Modifiers[0].Path)
}

func TestResponseItem_IsToolExchange(t *testing.T) {
	assert.True(t, FunctionCall("grep", "{}", "call_1").IsToolExchange())
	assert.True(t, FunctionCallOutput("call_1", "ok", true).IsToolExchange())
	assert.False(t, UserMessage(InputText("hi")).IsToolExchange())
}

func TestResponseItem_Role(t *testing.T) {
	role, ok := UserMessage(InputText("hi")).Role()
	assert.True(t, ok)
	assert.Equal(t, RoleUser, role)

	_, ok = FunctionCall("grep", "{}", "c1").Role()
	assert.False(t, ok)
}
