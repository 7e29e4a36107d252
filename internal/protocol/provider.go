package protocol

import "time"

// WireProtocol names the request/response shape a provider speaks.
type WireProtocol string

const (
	WireOpenAIResponses WireProtocol = "openai_responses"
	WireOpenAIChat      WireProtocol = "openai_chat"
	WireAnthropic       WireProtocol = "anthropic"
	WireGemini          WireProtocol = "gemini"
	WirePassthrough     WireProtocol = "passthrough"
)

// ModelOverride customizes a single model's behavior within a provider.
type ModelOverride struct {
	Alias          string
	Timeout        time.Duration
	ThinkingBudget *int
}

// ProviderInfo is the identity and connection configuration for one LLM
// provider entry. api_key must be non-empty before the first request;
// callers should validate at configuration load time, not per-request.
type ProviderInfo struct {
	Name           string
	Type           string
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Wire           WireProtocol
	Streaming      bool
	ModelOverrides map[string]ModelOverride
	Interceptors   []string
	Options        map[string]any
}

// EffectiveTimeout returns the per-model override's timeout if present,
// else the provider default.
func (p ProviderInfo) EffectiveTimeout(model string) time.Duration {
	if o, ok := p.ModelOverrides[model]; ok && o.Timeout > 0 {
		return o.Timeout
	}
	return p.Timeout
}

// Capability names an optional model feature.
type Capability string

const (
	CapabilityStreaming     Capability = "streaming"
	CapabilityTools         Capability = "tools"
	CapabilityVision        Capability = "vision"
	CapabilityThinking      Capability = "thinking"
	CapabilityStructuredOut Capability = "structured_output"
	CapabilityPromptCaching Capability = "prompt_caching"
)

// ModelInfo is a provider-independent description of one model.
type ModelInfo struct {
	Slug                    string
	DisplayName             string
	ContextWindow           int
	MaxOutputTokens         int
	Capabilities            map[Capability]bool
	DefaultThinkingLevel    *ThinkingLevel
	PrefersReasoningSummary bool
}

func (m ModelInfo) Has(c Capability) bool { return m.Capabilities[c] }

// ModelParameters is the layered, overridable set of request-time knobs.
// Each later layer in the resolution chain overrides only the fields it
// sets; a nil/zero field is transparent and leaves the prior layer's
// value in place.
type ModelParameters struct {
	Temperature     *float64
	TopP            *float64
	MaxOutputTokens *int
	Stop            []string
}

// Merge returns a new ModelParameters with non-nil/non-empty fields from
// override replacing the corresponding field of p. p is left unmodified.
func (p ModelParameters) Merge(override ModelParameters) ModelParameters {
	out := p
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.TopP != nil {
		out.TopP = override.TopP
	}
	if override.MaxOutputTokens != nil {
		out.MaxOutputTokens = override.MaxOutputTokens
	}
	if len(override.Stop) > 0 {
		out.Stop = override.Stop
	}
	return out
}

// ResolveModelParameters applies the documented precedence: defaults,
// then config, then provider, then the config's hard max-output-tokens
// ceiling which is never overridden upward.
func ResolveModelParameters(defaults, config, provider ModelParameters, configMaxOutput *int) ModelParameters {
	resolved := defaults.Merge(config).Merge(provider)
	if configMaxOutput != nil {
		if resolved.MaxOutputTokens == nil || *resolved.MaxOutputTokens > *configMaxOutput {
			resolved.MaxOutputTokens = configMaxOutput
		}
	}
	return resolved
}
