// Package anthropic implements provider.Adapter for the Anthropic
// Messages API over raw HTTP with manual SSE parsing, following the same
// teacher-grounded raw-transport approach as internal/provider/openai
// rather than the vendor SDK.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/provider"
	"github.com/kadirpekel/cocode/internal/provider/transport"
)

// Config holds per-provider settings.
type Config struct {
	BaseURL            string
	APIKey             string
	Version            string
	Timeout            time.Duration
	TLSConfig          *transport.TLSConfig
	RetryConfig        provider.RetryConfig
	RateLimitPerSecond float64
}

// Adapter implements provider.Adapter for Anthropic's Messages API.
type Adapter struct {
	cfg       Config
	transport *transport.Client
	retry     *provider.RetryExecutor
}

func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Version == "" {
		cfg.Version = "2023-06-01"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	tc, err := transport.New(cfg.Timeout, cfg.TLSConfig, transport.ParseAnthropicRateLimitHeaders, cfg.RateLimitPerSecond)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return &Adapter{cfg: cfg, transport: tc, retry: provider.NewRetryExecutor(cfg.RetryConfig)}, nil
}

func (a *Adapter) Name() string                     { return "anthropic" }
func (a *Adapter) SupportsPreviousResponseID() bool { return false }

type messagesRequest struct {
	Model       string          `json:"model"`
	Messages    []message       `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
	System      string          `json:"system,omitempty"`
	Tools       []anthropicTool `json:"tools,omitempty"`
	Stream      bool            `json:"stream"`
}

type message struct {
	Role    string    `json:"role"`
	Content []content `json:"content"`
}

type content struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

func buildRequest(model string, prompt protocol.Prompt, reqCtx provider.RequestContext, maxOutputTokens int) messagesRequest {
	req := messagesRequest{
		Model:       model,
		System:      prompt.Instructions,
		MaxTokens:   maxOutputTokens,
		Temperature: reqCtx.Parameters.Temperature,
		Stream:      true,
	}
	if reqCtx.Parameters.MaxOutputTokens != nil {
		req.MaxTokens = *reqCtx.Parameters.MaxOutputTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}

	for _, t := range prompt.Tools {
		req.Tools = append(req.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	req.Messages = toMessages(prompt.Input)
	return req
}

// toMessages folds the neutral ResponseItem sequence into Anthropic's
// role-grouped message array: function calls become tool_use blocks on
// the assistant turn, function call outputs become tool_result blocks on
// the following user turn, merged into the adjacent message of the same
// role the way the Messages API requires (no standalone tool messages).
func toMessages(items []protocol.ResponseItem) []message {
	var out []message
	appendBlock := func(role string, block content) {
		if len(out) > 0 && out[len(out)-1].Role == role {
			out[len(out)-1].Content = append(out[len(out)-1].Content, block)
			return
		}
		out = append(out, message{Role: role, Content: []content{block}})
	}

	for _, item := range items {
		switch item.Kind {
		case protocol.ItemUserMessage:
			for _, c := range item.Content {
				appendBlock("user", content{Type: "text", Text: c.Text})
			}
		case protocol.ItemAssistantMessage:
			for _, c := range item.Content {
				appendBlock("assistant", content{Type: "text", Text: c.Text})
			}
		case protocol.ItemFunctionCall:
			var args map[string]any
			_ = json.Unmarshal([]byte(item.ArgumentsRaw), &args)
			appendBlock("assistant", content{Type: "tool_use", ID: item.CallID, Name: item.Name, Input: args})
		case protocol.ItemFunctionCallOutput:
			appendBlock("user", content{Type: "tool_result", ToolUseID: item.CallID, Content: item.OutputContent})
		}
	}
	return out
}

func (a *Adapter) Stream(ctx context.Context, prompt protocol.Prompt, reqCtx provider.RequestContext, info protocol.ProviderInfo) (<-chan protocol.ResponseEvent, error) {
	req := buildRequest(reqCtx.Model, prompt, reqCtx, 0)

	resp, err := provider.Execute(ctx, a.retry, func(ctx context.Context, attempt int) (*http.Response, error) {
		return a.sendOnce(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}

	out := make(chan protocol.ResponseEvent, 64)
	go a.decodeStream(resp, out)
	return out, nil
}

func (a *Adapter) sendOnce(ctx context.Context, req messagesRequest) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", strings.TrimSpace(a.cfg.APIKey))
	httpReq.Header.Set("anthropic-version", a.cfg.Version)
	if err := transport.ReplayableBody(httpReq); err != nil {
		return nil, err
	}
	return a.transport.Do(httpReq)
}

type streamEvent struct {
	Type         string        `json:"type"`
	Index        int           `json:"index"`
	Delta        *delta        `json:"delta,omitempty"`
	ContentBlock *block        `json:"content_block,omitempty"`
	Usage        *usage        `json:"usage,omitempty"`
	Message      *messageStart `json:"message,omitempty"`
}

type messageStart struct {
	Usage *usage `json:"usage,omitempty"`
}

type delta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
}

type block struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// decodeStream accumulates tool-use JSON fragments per content-block
// index, since Anthropic streams tool arguments as partial JSON strings
// that must be concatenated before they parse.
func (a *Adapter) decodeStream(resp *http.Response, out chan<- protocol.ResponseEvent) {
	defer close(out)
	defer resp.Body.Close()

	toolIDs := make(map[int]string)
	toolNames := make(map[int]string)
	toolArgs := make(map[int]*strings.Builder)
	var totalUsage protocol.Usage

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "content_block_start":
			if ev.ContentBlock != nil && ev.ContentBlock.Type == "tool_use" {
				toolIDs[ev.Index] = ev.ContentBlock.ID
				toolNames[ev.Index] = ev.ContentBlock.Name
				toolArgs[ev.Index] = &strings.Builder{}
				out <- protocol.ResponseEvent{Kind: protocol.EventToolUseStart, ToolUseID: ev.ContentBlock.ID, ToolName: ev.ContentBlock.Name}
			}

		case "content_block_delta":
			if ev.Delta == nil {
				continue
			}
			if ev.Delta.Text != "" {
				out <- protocol.ResponseEvent{Kind: protocol.EventDelta, Text: ev.Delta.Text}
			}
			if ev.Delta.Type == "input_json_delta" && ev.Delta.PartialJSON != "" {
				if b, ok := toolArgs[ev.Index]; ok {
					b.WriteString(ev.Delta.PartialJSON)
					out <- protocol.ResponseEvent{Kind: protocol.EventToolUseDelta, ToolUseID: toolIDs[ev.Index], ToolArgsRaw: ev.Delta.PartialJSON}
				}
			}

		case "content_block_stop":
			if id, ok := toolIDs[ev.Index]; ok {
				args := ""
				if b, ok := toolArgs[ev.Index]; ok {
					args = b.String()
				}
				out <- protocol.ResponseEvent{Kind: protocol.EventToolUseDone, ToolUseID: id, ToolName: toolNames[ev.Index], ToolArgsRaw: args}
			}

		case "message_delta":
			if ev.Usage != nil {
				totalUsage.OutputTokens = ev.Usage.OutputTokens
			}

		case "message_start":
			if ev.Message != nil && ev.Message.Usage != nil {
				totalUsage.InputTokens = ev.Message.Usage.InputTokens
			}

		case "message_stop":
			out <- protocol.ResponseEvent{Kind: protocol.EventCompleted, Usage: totalUsage}
			return
		}
	}
}
