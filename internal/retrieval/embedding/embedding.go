// Package embedding defines the embedding provider contract the
// indexer's embedding queue calls, plus an OpenAI-compatible HTTP
// implementation built on provider/transport (the same rate-limit-aware
// client the LLM adapters use, since an embeddings endpoint returns the
// same x-ratelimit-* headers a chat completion does).
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kadirpekel/cocode/internal/provider/transport"
	"github.com/kadirpekel/cocode/internal/status"
)

// Provider embeds a batch of texts into fixed-dimension vectors.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Version() string
}

// OpenAIConfig configures OpenAIProvider.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// OpenAIProvider calls an OpenAI-compatible /embeddings endpoint.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *transport.Client
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	client, err := transport.New(0, nil, transport.ParseOpenAIRateLimitHeaders)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{cfg: cfg, client: client}, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: p.cfg.Model, Input: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if err := transport.ReplayableBody(req); err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%s: failed to decode embedding response: %w", status.ParseError, err)
	}

	out := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}

func (p *OpenAIProvider) Name() string    { return "openai" }
func (p *OpenAIProvider) Version() string { return p.cfg.Model }

// ArtifactID composes a provider's name and version into the key the
// embedding cache partitions by; changing either invalidates all prior
// cache entries for that provider.
func ArtifactID(p Provider) string {
	return p.Name() + "@" + p.Version()
}
