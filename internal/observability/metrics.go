package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides Prometheus metrics collection for a Driver's turns,
// tool dispatch, reminders and hooks. A nil *Metrics is valid and every
// method is a no-op on it, so callers don't need to branch on whether
// metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal   *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
	turnErrors   *prometheus.CounterVec
	activeTurns  prometheus.Gauge

	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	toolCallErrors   *prometheus.CounterVec

	providerStreamsTotal *prometheus.CounterVec
	providerTokens       *prometheus.CounterVec

	remindersEmitted *prometheus.CounterVec
	hookDecisions    *prometheus.CounterVec
}

// NewMetrics builds a Metrics instance registered to its own
// prometheus.Registry, or returns nil if cfg disables metrics.
func NewMetrics(cfg Config) *Metrics {
	if !cfg.MetricsEnabled {
		return nil
	}

	ns := cfg.MetricsNamespace
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.turnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "turn", Name: "total",
		Help: "Total number of conversation turns run.",
	}, []string{"agent_id"})

	m.turnDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "turn", Name: "duration_seconds",
		Help:    "Turn duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"agent_id"})

	m.turnErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "turn", Name: "errors_total",
		Help: "Total number of turns that ended in an error.",
	}, []string{"agent_id"})

	m.activeTurns = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: "turn", Name: "active",
		Help: "Number of turns currently in flight.",
	})

	m.toolCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "tool", Name: "calls_total",
		Help: "Total number of tool calls dispatched.",
	}, []string{"tool_name", "outcome"})

	m.toolCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: "tool", Name: "call_duration_seconds",
		Help:    "Tool call duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	}, []string{"tool_name"})

	m.toolCallErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "tool", Name: "errors_total",
		Help: "Total number of tool calls that returned an error.",
	}, []string{"tool_name"})

	m.providerStreamsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "provider", Name: "streams_total",
		Help: "Total number of provider stream requests started.",
	}, []string{"provider", "outcome"})

	m.providerTokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "provider", Name: "tokens_total",
		Help: "Total tokens consumed, by direction.",
	}, []string{"provider", "direction"})

	m.remindersEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "reminder", Name: "emitted_total",
		Help: "Total number of non-empty reminders injected, by tier.",
	}, []string{"tier"})

	m.hookDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "hook", Name: "decisions_total",
		Help: "Total number of hook dispatch outcomes, by event and decision.",
	}, []string{"event", "decision"})

	m.registry.MustRegister(
		m.turnsTotal, m.turnDuration, m.turnErrors, m.activeTurns,
		m.toolCallsTotal, m.toolCallDuration, m.toolCallErrors,
		m.providerStreamsTotal, m.providerTokens,
		m.remindersEmitted, m.hookDecisions,
	)
	return m
}

// Registry exposes the underlying prometheus.Registry so a caller can
// serve it over /metrics with promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// TurnStarted records that a turn began.
func (m *Metrics) TurnStarted(agentID string) {
	if m == nil {
		return
	}
	m.activeTurns.Inc()
	m.turnsTotal.WithLabelValues(agentID).Inc()
}

// TurnCompleted records a turn's outcome and duration.
func (m *Metrics) TurnCompleted(agentID string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.activeTurns.Dec()
	m.turnDuration.WithLabelValues(agentID).Observe(dur.Seconds())
	if err != nil {
		m.turnErrors.WithLabelValues(agentID).Inc()
	}
}

// ToolCallCompleted records one tool call's duration and outcome.
func (m *Metrics) ToolCallCompleted(toolName string, dur time.Duration, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
		m.toolCallErrors.WithLabelValues(toolName).Inc()
	}
	m.toolCallsTotal.WithLabelValues(toolName, outcome).Inc()
	m.toolCallDuration.WithLabelValues(toolName).Observe(dur.Seconds())
}

// ProviderStreamCompleted records one adapter Stream call's outcome and
// token usage.
func (m *Metrics) ProviderStreamCompleted(provider string, err error, inputTokens, outputTokens int64) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.providerStreamsTotal.WithLabelValues(provider, outcome).Inc()
	if inputTokens > 0 {
		m.providerTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.providerTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// ReminderEmitted records that a reminder tier produced a non-empty body.
func (m *Metrics) ReminderEmitted(tier string) {
	if m == nil {
		return
	}
	m.remindersEmitted.WithLabelValues(tier).Inc()
}

// HookDecision records a hook dispatch's effective decision for one
// event ("allowed", "blocked", "non_blocking_error").
func (m *Metrics) HookDecision(event, decision string) {
	if m == nil {
		return
	}
	m.hookDecisions.WithLabelValues(event, decision).Inc()
}
