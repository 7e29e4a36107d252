// Package gemini implements provider.Adapter for the Gemini
// generateContent API over raw HTTP with manual SSE parsing — the
// teacher's own Gemini integration never imports google.golang.org/genai
// either, it talks to the REST endpoint directly the same way it does
// for OpenAI and Anthropic.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/provider"
	"github.com/kadirpekel/cocode/internal/provider/transport"
)

// Config holds per-provider settings.
type Config struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	TLSConfig          *transport.TLSConfig
	RetryConfig        provider.RetryConfig
	RateLimitPerSecond float64
}

// Adapter implements provider.Adapter for Gemini's generateContent API.
type Adapter struct {
	cfg       Config
	transport *transport.Client
	retry     *provider.RetryExecutor
}

func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	tc, err := transport.New(cfg.Timeout, cfg.TLSConfig, transport.ParseGeminiRateLimitHeaders, cfg.RateLimitPerSecond)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Adapter{cfg: cfg, transport: tc, retry: provider.NewRetryExecutor(cfg.RetryConfig)}, nil
}

func (a *Adapter) Name() string                     { return "gemini" }
func (a *Adapter) SupportsPreviousResponseID() bool { return false }

type requestBody struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Tools             []geminiToolSet   `json:"tools,omitempty"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart map[string]any

type geminiToolSet struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations,omitempty"`
}

type functionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func buildRequest(prompt protocol.Prompt, reqCtx provider.RequestContext) requestBody {
	body := requestBody{}

	if prompt.Instructions != "" {
		body.SystemInstruction = &geminiContent{Role: "system", Parts: []geminiPart{{"text": prompt.Instructions}}}
	}

	cfg := &generationConfig{Temperature: reqCtx.Parameters.Temperature}
	if reqCtx.Parameters.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = *reqCtx.Parameters.MaxOutputTokens
	}
	body.GenerationConfig = cfg

	if len(prompt.Tools) > 0 {
		var decls []functionDeclaration
		for _, t := range prompt.Tools {
			decls = append(decls, functionDeclaration{Name: t.Name, Description: t.Description, Parameters: t.InputSchema})
		}
		body.Tools = []geminiToolSet{{FunctionDeclarations: decls}}
	}

	body.Contents = toContents(prompt.Input)
	return body
}

// toContents maps the neutral item sequence to Gemini's role-grouped
// contents array: function calls become a "model" turn functionCall
// part, outputs become a "user" turn functionResponse part, matching the
// structure Gemini's generateContent API requires.
func toContents(items []protocol.ResponseItem) []geminiContent {
	var out []geminiContent
	appendPart := func(role string, part geminiPart) {
		if len(out) > 0 && out[len(out)-1].Role == role {
			out[len(out)-1].Parts = append(out[len(out)-1].Parts, part)
			return
		}
		out = append(out, geminiContent{Role: role, Parts: []geminiPart{part}})
	}

	for _, item := range items {
		switch item.Kind {
		case protocol.ItemUserMessage:
			for _, c := range item.Content {
				appendPart("user", geminiPart{"text": c.Text})
			}
		case protocol.ItemAssistantMessage:
			for _, c := range item.Content {
				appendPart("model", geminiPart{"text": c.Text})
			}
		case protocol.ItemFunctionCall:
			var args map[string]any
			_ = json.Unmarshal([]byte(item.ArgumentsRaw), &args)
			appendPart("model", geminiPart{"functionCall": map[string]any{"name": item.Name, "args": args}})
		case protocol.ItemFunctionCallOutput:
			var response any
			if err := json.Unmarshal([]byte(item.OutputContent), &response); err != nil {
				response = map[string]any{"result": item.OutputContent}
			}
			appendPart("user", geminiPart{"functionResponse": map[string]any{"name": item.CallID, "response": response}})
		}
	}
	return out
}

func (a *Adapter) Stream(ctx context.Context, prompt protocol.Prompt, reqCtx provider.RequestContext, info protocol.ProviderInfo) (<-chan protocol.ResponseEvent, error) {
	req := buildRequest(prompt, reqCtx)

	resp, err := provider.Execute(ctx, a.retry, func(ctx context.Context, attempt int) (*http.Response, error) {
		return a.sendOnce(ctx, reqCtx.Model, req)
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}

	out := make(chan protocol.ResponseEvent, 64)
	go a.decodeStream(resp, out)
	return out, nil
}

func (a *Adapter) sendOnce(ctx context.Context, model string, req requestBody) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		a.cfg.BaseURL, model, url.QueryEscape(a.cfg.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := transport.ReplayableBody(httpReq); err != nil {
		return nil, err
	}
	return a.transport.Do(httpReq)
}

type geminiResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	Error         *geminiError   `json:"error,omitempty"`
}

type candidate struct {
	Content geminiContent `json:"content"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type geminiError struct {
	Message string `json:"message"`
}

func (a *Adapter) decodeStream(resp *http.Response, out chan<- protocol.ResponseEvent) {
	defer close(out)
	defer resp.Body.Close()

	var finalUsage protocol.Usage

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var resp geminiResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &resp); err != nil {
			continue
		}

		if resp.Error != nil {
			out <- protocol.ResponseEvent{Kind: protocol.EventError, Err: fmt.Errorf("gemini: %s", resp.Error.Message)}
			return
		}

		if len(resp.Candidates) > 0 {
			for _, part := range resp.Candidates[0].Content.Parts {
				if text, ok := part["text"].(string); ok {
					out <- protocol.ResponseEvent{Kind: protocol.EventDelta, Text: text}
				}
				if fc, ok := part["functionCall"].(map[string]any); ok {
					name, _ := fc["name"].(string)
					argsJSON := "{}"
					if args, ok := fc["args"]; ok {
						if b, err := json.Marshal(args); err == nil {
							argsJSON = string(b)
						}
					}
					id := "call_" + uuid.NewString()
					out <- protocol.ResponseEvent{Kind: protocol.EventToolUseStart, ToolUseID: id, ToolName: name}
					out <- protocol.ResponseEvent{Kind: protocol.EventToolUseDone, ToolUseID: id, ToolName: name, ToolArgsRaw: argsJSON}
				}
			}
		}

		if resp.UsageMetadata != nil {
			finalUsage = protocol.Usage{
				InputTokens:  resp.UsageMetadata.PromptTokenCount,
				OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			}
		}
	}

	out <- protocol.ResponseEvent{Kind: protocol.EventCompleted, Usage: finalUsage}
}
