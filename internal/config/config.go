// Package config loads and layers the runtime's YAML configuration file
// using koanf, with environment-variable overlay and optional hot
// reload via fsnotify.
package config

import "time"

// ProviderConfig mirrors protocol.ProviderInfo's on-disk shape.
type ProviderConfig struct {
	Name               string                   `yaml:"name"`
	Type               string                   `yaml:"type"`
	BaseURL            string                   `yaml:"base_url"`
	APIKeyEnv          string                   `yaml:"api_key_env"`
	Timeout            time.Duration            `yaml:"timeout"`
	Wire               string                   `yaml:"wire"`
	Streaming          bool                     `yaml:"streaming"`
	RateLimitPerSecond float64                  `yaml:"rate_limit_per_second"`
	Models             map[string]ModelOverride `yaml:"models"`
}

// ModelOverride is the on-disk shape of a per-model override.
type ModelOverride struct {
	Alias          string        `yaml:"alias"`
	Timeout        time.Duration `yaml:"timeout"`
	ThinkingBudget *int          `yaml:"thinking_budget"`
}

// RetryConfig configures the provider adapter's retry executor.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	JitterRatio       float64       `yaml:"jitter_ratio"`
	RespectRetryAfter bool          `yaml:"respect_retry_after"`
}

// DefaultRetryConfig mirrors the conservative defaults used across the
// pack's httpclient-style retry strategies.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		JitterRatio:       0.2,
		RespectRetryAfter: true,
	}
}

// RetrievalConfig configures the indexing/search engine's storage paths
// and tuning knobs.
type RetrievalConfig struct {
	EmbeddingsDBPath        string  `yaml:"embeddings_db_path"`
	VectorsPath             string  `yaml:"vectors_path"`
	ChunksDBPath            string  `yaml:"chunks_db_path"`
	EmbeddingModel          string  `yaml:"embedding_model"`
	EmbeddingVersion        string  `yaml:"embedding_version"`
	MaxChunks               int     `yaml:"max_chunks"`
	ChunkMinTokens          int     `yaml:"chunk_min_tokens"`
	ChunkMaxTokens          int     `yaml:"chunk_max_tokens"`
	ChunkOverlapPct         float64 `yaml:"chunk_overlap_pct"`
	RerankerExactMatchBoost float64 `yaml:"reranker_exact_match_boost"`
	RerankerFilepathBoost   float64 `yaml:"reranker_filepath_boost"`
	RerankerRecencyBoost    float64 `yaml:"reranker_recency_boost"`
	RerankerRecencyDays     int     `yaml:"reranker_recency_days"`
	RerankerEnabled         bool    `yaml:"reranker_enabled"`
	PageRankAlpha           float64 `yaml:"pagerank_alpha"`
}

// DefaultRetrievalConfig returns the defaults ported from the original
// rule-based reranker and chunker tuning.
func DefaultRetrievalConfig(homeDir string) RetrievalConfig {
	return RetrievalConfig{
		EmbeddingsDBPath:        homeDir + "/retrieval/embeddings.db",
		VectorsPath:             homeDir + "/retrieval/vectors",
		ChunksDBPath:            homeDir + "/retrieval/chunks.db",
		EmbeddingModel:          "text-embedding-3-small",
		EmbeddingVersion:        "v1",
		MaxChunks:               50_000,
		ChunkMinTokens:          256,
		ChunkMaxTokens:          512,
		ChunkOverlapPct:         0.10,
		RerankerExactMatchBoost: 2.0,
		RerankerFilepathBoost:   1.5,
		RerankerRecencyBoost:    1.2,
		RerankerRecencyDays:     7,
		RerankerEnabled:         true,
		PageRankAlpha:           1.0,
	}
}

// HookConfig configures one hook-point's action list.
type HookConfig struct {
	Point     string `yaml:"point"`
	Command   string `yaml:"command,omitempty"`
	TimeoutMS int    `yaml:"timeout_ms"`
	Parallel  bool   `yaml:"parallel"`
}

// ObservabilityConfig configures the driver's Prometheus metrics and
// OpenTelemetry tracing. Both default to disabled.
type ObservabilityConfig struct {
	MetricsEnabled      bool    `yaml:"metrics_enabled"`
	MetricsNamespace    string  `yaml:"metrics_namespace"`
	TracingEnabled      bool    `yaml:"tracing_enabled"`
	TracingServiceName  string  `yaml:"tracing_service_name"`
	TracingSamplingRate float64 `yaml:"tracing_sampling_rate"`
	TracingExporter     string  `yaml:"tracing_exporter"`
}

// DefaultObservabilityConfig disables both metrics and tracing.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		MetricsNamespace:    "cocode",
		TracingServiceName:  "cocode",
		TracingSamplingRate: 1.0,
		TracingExporter:     "stdout",
	}
}

// Config is the fully-resolved, process-wide configuration.
type Config struct {
	LogLevel          string                    `yaml:"log_level"`
	LogFormat         string                    `yaml:"log_format"`
	Providers         map[string]ProviderConfig `yaml:"providers"`
	Retry             RetryConfig               `yaml:"retry"`
	Retrieval         RetrievalConfig           `yaml:"retrieval"`
	Hooks             []HookConfig              `yaml:"hooks"`
	SkillRoots        []string                  `yaml:"skill_roots"`
	PlanModeDefault   bool                      `yaml:"plan_mode_default"`
	AutoCompactTarget int                       `yaml:"auto_compact_target"`
	Observability     ObservabilityConfig       `yaml:"observability"`
}

// Default returns a Config with sane defaults for a fresh workspace.
func Default(homeDir string) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "simple",
		Providers:         map[string]ProviderConfig{},
		Retry:             DefaultRetryConfig(),
		Retrieval:         DefaultRetrievalConfig(homeDir),
		AutoCompactTarget: 150_000,
		Observability:     DefaultObservabilityConfig(),
	}
}
