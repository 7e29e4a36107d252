// Package openai implements provider.Adapter for the OpenAI Responses
// API over raw HTTP with manual SSE parsing, following the wire shapes
// and event names the teacher's own OpenAI integration uses rather than
// the vendor SDK (see DESIGN.md for why the SDK was dropped).
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/provider"
	"github.com/kadirpekel/cocode/internal/provider/transport"
)

// SSE event names for the Responses API streaming format.
const (
	eventResponseCreated       = "response.created"
	eventOutputItemAdded       = "response.output_item.added"
	eventOutputItemDone        = "response.output_item.done"
	eventOutputTextDelta       = "response.output_text.delta"
	eventFunctionCallArgsDelta = "response.function_call_arguments.delta"
	eventFunctionCallArgsDone  = "response.function_call_arguments.done"
	eventReasoningSummaryDelta = "response.reasoning_summary_text.delta"
	eventResponseCompleted     = "response.completed"
)

// Config holds the per-provider settings an Adapter needs: base URL,
// credentials, and the transport it sends requests through.
type Config struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	TLSConfig          *transport.TLSConfig
	RetryConfig        provider.RetryConfig
	RateLimitPerSecond float64
}

// Adapter implements provider.Adapter for OpenAI's Responses API.
type Adapter struct {
	cfg       Config
	transport *transport.Client
	retry     *provider.RetryExecutor
}

// New builds an Adapter from cfg.
func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	tc, err := transport.New(cfg.Timeout, cfg.TLSConfig, transport.ParseOpenAIRateLimitHeaders, cfg.RateLimitPerSecond)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return &Adapter{
		cfg:       cfg,
		transport: tc,
		retry:     provider.NewRetryExecutor(cfg.RetryConfig),
	}, nil
}

func (a *Adapter) Name() string                     { return "openai" }
func (a *Adapter) SupportsPreviousResponseID() bool { return true }

// requestBody mirrors the Responses API's top-level request shape.
type requestBody struct {
	Model              string           `json:"model"`
	Input              []inputItem      `json:"input,omitempty"`
	Instructions       string           `json:"instructions,omitempty"`
	MaxOutputTokens    *int             `json:"max_output_tokens,omitempty"`
	Temperature        *float64         `json:"temperature,omitempty"`
	Tools              []responsesTool  `json:"tools,omitempty"`
	ParallelToolCalls  bool             `json:"parallel_tool_calls,omitempty"`
	Reasoning          *reasoningConfig `json:"reasoning,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
	Stream             bool             `json:"stream"`
}

type reasoningConfig struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type responsesTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Strict      bool           `json:"strict,omitempty"`
}

type inputItem struct {
	Type      string  `json:"type"`
	Role      string  `json:"role,omitempty"`
	Content   any     `json:"content,omitempty"`
	CallID    string  `json:"call_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Arguments string  `json:"arguments,omitempty"`
	Output    *string `json:"output,omitempty"`
}

func buildRequest(model string, prompt protocol.Prompt, reqCtx provider.RequestContext) requestBody {
	body := requestBody{
		Model:              model,
		Instructions:       prompt.Instructions,
		ParallelToolCalls:  prompt.ParallelToolCalls,
		PreviousResponseID: prompt.PreviousResponseID,
		Stream:             true,
	}

	if reqCtx.Parameters.MaxOutputTokens != nil {
		body.MaxOutputTokens = reqCtx.Parameters.MaxOutputTokens
	}
	if reqCtx.Parameters.Temperature != nil {
		body.Temperature = reqCtx.Parameters.Temperature
	}
	if level := reqCtx.ReasoningEffort.CollapseAboveHigh(); level != protocol.ThinkingNone {
		rc := &reasoningConfig{Effort: level.String()}
		if reqCtx.ReasoningSummary {
			rc.Summary = "auto"
		}
		body.Reasoning = rc
	}

	for _, t := range prompt.Tools {
		body.Tools = append(body.Tools, responsesTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}

	for _, item := range prompt.Input {
		if converted, ok := toInputItem(item); ok {
			body.Input = append(body.Input, converted)
		}
	}

	return body
}

func toInputItem(item protocol.ResponseItem) (inputItem, bool) {
	switch item.Kind {
	case protocol.ItemUserMessage:
		return inputItem{Type: "message", Role: "user", Content: contentOf(item)}, true
	case protocol.ItemAssistantMessage:
		return inputItem{Type: "message", Role: "assistant", Content: contentOf(item)}, true
	case protocol.ItemSystemMessage:
		return inputItem{Type: "message", Role: "system", Content: contentOf(item)}, true
	case protocol.ItemFunctionCall:
		return inputItem{Type: "function_call", CallID: item.CallID, Name: item.Name, Arguments: item.ArgumentsRaw}, true
	case protocol.ItemFunctionCallOutput:
		out := item.OutputContent
		return inputItem{Type: "function_call_output", CallID: item.CallID, Output: &out}, true
	default:
		return inputItem{}, false
	}
}

func contentOf(item protocol.ResponseItem) []map[string]string {
	out := make([]map[string]string, 0, len(item.Content))
	for _, c := range item.Content {
		switch c.Kind {
		case protocol.ContentInputText:
			out = append(out, map[string]string{"type": "input_text", "text": c.Text})
		case protocol.ContentOutputText:
			out = append(out, map[string]string{"type": "output_text", "text": c.Text})
		case protocol.ContentInputImage:
			out = append(out, map[string]string{"type": "input_image", "image_url": c.ImageURL})
		}
	}
	return out
}

// Stream sends prompt to the Responses API and decodes the SSE stream
// into protocol.ResponseEvent values. Retries (on a classified
// transport.Error) happen around the whole request, since a dropped
// connection mid-stream must restart the request from scratch — there is
// no partial-stream resume in the Responses API.
func (a *Adapter) Stream(ctx context.Context, prompt protocol.Prompt, reqCtx provider.RequestContext, info protocol.ProviderInfo) (<-chan protocol.ResponseEvent, error) {
	body := buildRequest(reqCtx.Model, prompt, reqCtx)

	resp, err := provider.Execute(ctx, a.retry, func(ctx context.Context, attempt int) (*http.Response, error) {
		return a.sendOnce(ctx, body)
	})
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}

	out := make(chan protocol.ResponseEvent, 64)
	go a.decodeStream(resp, out)
	return out, nil
}

func (a *Adapter) sendOnce(ctx context.Context, body requestBody) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(a.cfg.APIKey))
	if err := transport.ReplayableBody(req); err != nil {
		return nil, err
	}

	return a.transport.Do(req)
}

// decodeStream reads Server-Sent Events line by line, tracking the
// accumulating function-call-arguments buffer across delta events the
// way the Responses API requires (arguments arrive incrementally and
// only the done event carries the final JSON).
func (a *Adapter) decodeStream(resp *http.Response, out chan<- protocol.ResponseEvent) {
	defer close(out)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	var currentEventType string
	var functionCallID, functionCallName string
	var functionArgs strings.Builder

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				out <- protocol.ResponseEvent{Kind: protocol.EventError, Err: fmt.Errorf("openai: read stream: %w", err)}
			}
			return
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if bytes.HasPrefix(line, []byte("event: ")) {
			currentEventType = string(bytes.TrimSpace(line[7:]))
			continue
		}
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}

		if !gjson.ValidBytes(line[6:]) {
			slog.Debug("openai: failed to parse SSE event")
			currentEventType = ""
			continue
		}
		raw := gjson.ParseBytes(line[6:])

		eventType := currentEventType
		if eventType == "" {
			eventType = raw.Get("type").String()
		}
		currentEventType = ""

		switch eventType {
		case eventResponseCreated:
			if id := raw.Get("response.id"); id.Exists() {
				out <- protocol.ResponseEvent{Kind: protocol.EventResponseCreated, ResponseID: id.String()}
			}

		case eventOutputItemAdded:
			item := raw.Get("item")
			if item.Get("type").String() == "function_call" {
				functionCallID = item.Get("call_id").String()
				if functionCallID == "" {
					functionCallID = item.Get("id").String()
				}
				functionCallName = item.Get("name").String()
				functionArgs.Reset()
				out <- protocol.ResponseEvent{Kind: protocol.EventToolUseStart, ToolUseID: functionCallID, ToolName: functionCallName}
			}

		case eventOutputTextDelta:
			if delta := raw.Get("delta"); delta.Exists() {
				out <- protocol.ResponseEvent{Kind: protocol.EventDelta, Text: delta.String()}
			}

		case eventReasoningSummaryDelta:
			if delta := raw.Get("delta"); delta.Exists() {
				out <- protocol.ResponseEvent{Kind: protocol.EventReasoning, Text: delta.String()}
			}

		case eventFunctionCallArgsDelta:
			if delta := raw.Get("delta"); delta.Exists() {
				functionArgs.WriteString(delta.String())
				out <- protocol.ResponseEvent{Kind: protocol.EventToolUseDelta, ToolUseID: functionCallID, ToolArgsRaw: delta.String()}
			}

		case eventFunctionCallArgsDone:
			args := functionArgs.String()
			if finalArgs := raw.Get("arguments").String(); finalArgs != "" {
				args = finalArgs
			}
			out <- protocol.ResponseEvent{Kind: protocol.EventToolUseDone, ToolUseID: functionCallID, ToolName: functionCallName, ToolArgsRaw: args}
			functionCallID, functionCallName = "", ""
			functionArgs.Reset()

		case eventOutputItemDone:
			item := raw.Get("item")
			if item.Get("type").String() == "message" {
				out <- protocol.ResponseEvent{Kind: protocol.EventOutputItemDone, Item: messageItemFrom(item)}
			}

		case eventResponseCompleted:
			usage := protocol.Usage{
				InputTokens:  int(raw.Get("response.usage.input_tokens").Int()),
				OutputTokens: int(raw.Get("response.usage.output_tokens").Int()),
			}
			out <- protocol.ResponseEvent{Kind: protocol.EventCompleted, Usage: usage}
			return
		}
	}
}

func messageItemFrom(item gjson.Result) protocol.ResponseItem {
	var content []protocol.ContentItem
	for _, part := range item.Get("content").Array() {
		content = append(content, protocol.OutputText(part.Get("text").String()))
	}
	return protocol.AssistantMessage(content...)
}
