package provider

import (
	"fmt"

	"github.com/kadirpekel/cocode/internal/config"
	"github.com/kadirpekel/cocode/internal/provider/anthropic"
	"github.com/kadirpekel/cocode/internal/provider/gemini"
	"github.com/kadirpekel/cocode/internal/provider/openai"
)

// toRetryConfig copies a config.RetryConfig into the provider package's
// own RetryConfig, keeping internal/config free of an internal/provider
// import.
func toRetryConfig(rc config.RetryConfig) RetryConfig {
	return RetryConfig{
		MaxAttempts:       rc.MaxAttempts,
		InitialBackoff:    rc.InitialBackoff,
		MaxBackoff:        rc.MaxBackoff,
		BackoffMultiplier: rc.BackoffMultiplier,
		JitterRatio:       rc.JitterRatio,
		RespectRetryAfter: rc.RespectRetryAfter,
	}
}

// BuildAdapter constructs the built-in Adapter named by cfg.Type. Supported
// types are "openai", "anthropic", "gemini" — anything else is an error
// naming the unsupported type, mirroring the teacher registry's own
// unsupported-type message.
func BuildAdapter(cfg config.ProviderConfig, retry config.RetryConfig) (Adapter, error) {
	apiKey := config.ResolveAPIKey(cfg)
	rc := toRetryConfig(retry)

	switch cfg.Type {
	case "openai":
		return openai.New(openai.Config{
			BaseURL:            cfg.BaseURL,
			APIKey:             apiKey,
			Timeout:            cfg.Timeout,
			RetryConfig:        rc,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
		})
	case "anthropic":
		return anthropic.New(anthropic.Config{
			BaseURL:            cfg.BaseURL,
			APIKey:             apiKey,
			Timeout:            cfg.Timeout,
			RetryConfig:        rc,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
		})
	case "gemini":
		return gemini.New(gemini.Config{
			BaseURL:            cfg.BaseURL,
			APIKey:             apiKey,
			Timeout:            cfg.Timeout,
			RetryConfig:        rc,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
		})
	default:
		return nil, fmt.Errorf("provider: unsupported type %q (supported: openai, anthropic, gemini)", cfg.Type)
	}
}

// BuildRegistry constructs one Adapter per entry in providers and registers
// each under the adapter's own Name() (its provider type, not the entry's
// key), so entries that share a type replace one another. It returns the
// first construction error encountered.
func BuildRegistry(providers map[string]config.ProviderConfig, retry config.RetryConfig) (*Registry, error) {
	reg := NewRegistry()
	for name, cfg := range providers {
		adapter, err := BuildAdapter(cfg, retry)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		reg.Register(adapter)
	}
	return reg, nil
}
