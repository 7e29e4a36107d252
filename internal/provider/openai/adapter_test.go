package openai

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

func TestBuildRequest_TranslatesHistoryAndTools(t *testing.T) {
	prompt := protocol.Prompt{
		Instructions: "be helpful",
		Input: []protocol.ResponseItem{
			protocol.UserMessage(protocol.InputText("hi")),
			protocol.FunctionCall("read_file", `{"path":"a.go"}`, "call_1"),
			protocol.FunctionCallOutput("call_1", "package main", true),
		},
		Tools: []protocol.ToolSpec{
			{ToolDefinition: protocol.ToolDefinition{Name: "read_file", Description: "reads a file"}},
		},
	}

	body := buildRequest("gpt-5", prompt, provider.RequestContext{})

	assert.Equal(t, "gpt-5", body.Model)
	assert.Equal(t, "be helpful", body.Instructions)
	require.Len(t, body.Input, 3)
	assert.Equal(t, "message", body.Input[0].Type)
	assert.Equal(t, "function_call", body.Input[1].Type)
	assert.Equal(t, "call_1", body.Input[1].CallID)
	assert.Equal(t, "function_call_output", body.Input[2].Type)
	require.NotNil(t, body.Input[2].Output)
	assert.Equal(t, "package main", *body.Input[2].Output)
	require.Len(t, body.Tools, 1)
	assert.Equal(t, "read_file", body.Tools[0].Name)
}

func TestStream_DecodesTextAndToolCallEvents(t *testing.T) {
	lines := []string{
		`event: response.created`,
		`data: {"response":{"id":"resp_1"}}`,
		``,
		`event: response.output_item.added`,
		`data: {"item":{"type":"function_call","call_id":"call_1","name":"read_file"}}`,
		``,
		`event: response.function_call_arguments.delta`,
		`data: {"delta":"partial"}`,
		``,
		`event: response.function_call_arguments.done`,
		`data: {"arguments":"{\"path\":\"a.go\"}"}`,
		``,
		`event: response.output_text.delta`,
		`data: {"delta":"done"}`,
		``,
		`event: response.completed`,
		`data: {"response":{"usage":{"input_tokens":10,"output_tokens":5}}}`,
		``,
	}
	sse := strings.Join(lines, "\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, sse)
	}))
	defer srv.Close()

	adapter, err := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	require.NoError(t, err)

	events, err := adapter.Stream(context.Background(), protocol.Prompt{}, provider.RequestContext{Model: "gpt-5"}, protocol.ProviderInfo{})
	require.NoError(t, err)

	var kinds []protocol.EventKind
	var toolArgs string
	var usage protocol.Usage
	for ev := range events {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == protocol.EventToolUseDone {
			toolArgs = ev.ToolArgsRaw
		}
		if ev.Kind == protocol.EventCompleted {
			usage = ev.Usage
		}
	}

	assert.Contains(t, kinds, protocol.EventResponseCreated)
	assert.Contains(t, kinds, protocol.EventToolUseStart)
	assert.Contains(t, kinds, protocol.EventToolUseDelta)
	assert.Contains(t, kinds, protocol.EventToolUseDone)
	assert.Contains(t, kinds, protocol.EventDelta)
	assert.Contains(t, kinds, protocol.EventCompleted)
	assert.Equal(t, `{"path":"a.go"}`, toolArgs)
	assert.Equal(t, 10, usage.InputTokens)
	assert.Equal(t, 5, usage.OutputTokens)
}
