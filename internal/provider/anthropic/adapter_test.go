package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/provider"
)

func TestToMessages_GroupsToolExchangeIntoAdjacentRole(t *testing.T) {
	items := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("read a.go")),
		protocol.FunctionCall("read_file", `{"path":"a.go"}`, "call_1"),
		protocol.FunctionCallOutput("call_1", "package main", true),
	}

	msgs := toMessages(items)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	require.Len(t, msgs[1].Content, 1)
	assert.Equal(t, "tool_use", msgs[1].Content[0].Type)
}

func TestBuildRequest_DefaultsMaxTokens(t *testing.T) {
	req := buildRequest("claude-opus", protocol.Prompt{Instructions: "be terse"}, provider.RequestContext{}, 0)
	assert.Equal(t, "claude-opus", req.Model)
	assert.Equal(t, "be terse", req.System)
	assert.Equal(t, 4096, req.MaxTokens)
}

func TestStream_DecodesTextDeltaAndToolUse(t *testing.T) {
	lines := []string{
		`data: {"type":"message_start","message":{"usage":{"input_tokens":12,"output_tokens":0}}}`,
		``,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"read_file"}}`,
		``,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"path\":\"a.go\"}"}}`,
		``,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"text_delta","text":"hi"}}`,
		``,
		`data: {"type":"message_delta","delta":{},"usage":{"output_tokens":3}}`,
		``,
		`data: {"type":"message_stop"}`,
		``,
	}
	sse := strings.Join(lines, "\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, sse)
	}))
	defer srv.Close()

	adapter, err := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	require.NoError(t, err)

	events, err := adapter.Stream(context.Background(), protocol.Prompt{}, provider.RequestContext{Model: "claude-opus"}, protocol.ProviderInfo{})
	require.NoError(t, err)

	var toolArgs string
	var usage protocol.Usage
	var sawDelta bool
	for ev := range events {
		switch ev.Kind {
		case protocol.EventToolUseDone:
			toolArgs = ev.ToolArgsRaw
		case protocol.EventDelta:
			sawDelta = true
		case protocol.EventCompleted:
			usage = ev.Usage
		}
	}

	assert.Equal(t, `{"path":"a.go"}`, toolArgs)
	assert.True(t, sawDelta)
	assert.Equal(t, 12, usage.InputTokens)
	assert.Equal(t, 3, usage.OutputTokens)
}
