package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderInfo_RoundTrip(t *testing.T) {
	p := ProviderInfo{
		Name:    "openai",
		Type:    "openai",
		BaseURL: "https://api.openai.com/v1",
		APIKey:  "sk-test",
		Timeout: 30 * time.Second,
		Wire:    WireOpenAIResponses,
		ModelOverrides: map[string]ModelOverride{
			"gpt-5": {Alias: "gpt-5-latest", Timeout: 60 * time.Second},
		},
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded ProviderInfo
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, p, decoded)
}

func TestModelInfo_RoundTrip(t *testing.T) {
	level := ThinkingHigh
	m := ModelInfo{
		Slug:            "claude-sonnet",
		DisplayName:     "Claude Sonnet",
		ContextWindow:   200_000,
		MaxOutputTokens: 8192,
		Capabilities: map[Capability]bool{
			CapabilityStreaming: true,
			CapabilityTools:     true,
		},
		DefaultThinkingLevel: &level,
	}
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded ModelInfo
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, m, decoded)
}

func TestEffectiveTimeout_FallsBackToProviderDefault(t *testing.T) {
	p := ProviderInfo{Timeout: 10 * time.Second}
	assert.Equal(t, 10*time.Second, p.EffectiveTimeout("unknown-model"))

	p.ModelOverrides = map[string]ModelOverride{"m1": {Timeout: 45 * time.Second}}
	assert.Equal(t, 45*time.Second, p.EffectiveTimeout("m1"))
	assert.Equal(t, 10*time.Second, p.EffectiveTimeout("m2"))
}

func TestResolveModelParameters_LayeredOverride(t *testing.T) {
	temp := 0.7
	defaults := ModelParameters{Temperature: &temp}

	configTemp := 0.2
	config := ModelParameters{Temperature: &configTemp}

	providerMax := 4096
	provider := ModelParameters{MaxOutputTokens: &providerMax}

	ceiling := 2048
	resolved := ResolveModelParameters(defaults, config, provider, &ceiling)

	assert.Equal(t, 0.2, *resolved.Temperature, "config layer overrides defaults")
	assert.Equal(t, 2048, *resolved.MaxOutputTokens, "config ceiling wins over provider's higher value")
}

func TestResolveModelParameters_NilIsTransparent(t *testing.T) {
	temp := 0.5
	defaults := ModelParameters{Temperature: &temp}
	resolved := ResolveModelParameters(defaults, ModelParameters{}, ModelParameters{}, nil)
	require.NotNil(t, resolved.Temperature)
	assert.Equal(t, 0.5, *resolved.Temperature)
}

func TestThinkingLevel_CollapseAboveHigh(t *testing.T) {
	assert.Equal(t, ThinkingHigh, ThinkingXHigh.CollapseAboveHigh())
	assert.Equal(t, ThinkingMedium, ThinkingMedium.CollapseAboveHigh())
}
