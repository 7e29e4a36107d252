package tools

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

const (
	webFetchMaxBytes = 2 * 1024 * 1024
	webFetchMaxChars = 50_000
	webFetchTimeout  = 20 * time.Second
)

// WebFetchTool retrieves a URL, sniffs its content type, strips HTML
// tags down to readable text for HTML responses, and truncates on a
// UTF-8 rune boundary so the result never ends mid-codepoint.
type WebFetchTool struct {
	tool.Base
	Client *http.Client
}

func NewWebFetchTool() *WebFetchTool {
	return &WebFetchTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "WebFetch",
			Description: "Fetch a URL and return its text content, converting HTML to plain text.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"url"},
				"properties": map[string]any{
					"url": map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: webFetchMaxChars,
		}},
		Client: &http.Client{Timeout: webFetchTimeout},
	}
}

func (t *WebFetchTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	url := argString(args, "url")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "url must be http(s)")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid url", err)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.NetworkError, "fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return protocol.ErrorOutput(fmt.Sprintf("%s returned HTTP %d", url, resp.StatusCode)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, webFetchMaxBytes))
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to read response body", err)
	}

	contentType := resp.Header.Get("Content-Type")
	text := string(body)
	if strings.Contains(contentType, "html") {
		text = htmlToText(text)
	}

	text = truncateUTF8(text, webFetchMaxChars)
	return protocol.TextOutput(text), nil
}

// htmlToText is a minimal tag stripper: good enough to turn a page into
// readable text for a model, not a full HTML parser.
func htmlToText(html string) string {
	var out strings.Builder
	inTag := false
	inScript := false
	lower := strings.ToLower(html)
	for i, r := range html {
		if !inTag && strings.HasPrefix(lower[i:], "<script") {
			inScript = true
		}
		if inScript && strings.HasPrefix(lower[i:], "</script>") {
			inScript = false
		}
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
			out.WriteByte(' ')
		default:
			if !inTag && !inScript {
				out.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(out.String()), " ")
}

func truncateUTF8(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[... truncated ...]"
}
