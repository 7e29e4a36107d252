// Package observability wires structured metrics and distributed
// tracing into the conversation driver: Prometheus counters/histograms
// for turns, tool calls, reminders and hooks, plus an OpenTelemetry
// tracer for per-round spans. Both are optional — a disabled Config
// yields a Metrics/Tracer pair that is safe to call and does nothing.
package observability

// Config controls whether metrics and tracing are enabled and how they
// are exported.
type Config struct {
	MetricsEnabled   bool
	MetricsNamespace string

	TracingEnabled      bool
	TracingServiceName  string
	TracingSamplingRate float64
	// TracingExporter selects the span exporter: "stdout" writes spans
	// as JSON to stderr, anything else (including empty) disables
	// export while still running the sampler/processor pipeline.
	TracingExporter string
}

// DefaultConfig disables both metrics and tracing, matching the
// teacher's own opt-in observability stance (NewMetrics/InitGlobalTracer
// both early-return a no-op when their config's Enabled is false).
func DefaultConfig() Config {
	return Config{
		MetricsEnabled:      false,
		MetricsNamespace:    "cocode",
		TracingEnabled:      false,
		TracingServiceName:  "cocode",
		TracingSamplingRate: 1.0,
		TracingExporter:     "stdout",
	}
}
