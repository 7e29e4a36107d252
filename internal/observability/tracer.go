package observability

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names used across the driver's per-round tracing.
const (
	SpanTurn           = "driver.turn"
	SpanProviderStream = "driver.provider_stream"
	SpanToolCall       = "driver.tool_call"
	SpanReminder       = "driver.reminder"
)

// Attribute keys used across the driver's spans.
const (
	AttrAgentID   = "cocode.agent_id"
	AttrProvider  = "cocode.provider"
	AttrModel     = "cocode.model"
	AttrToolName  = "cocode.tool_name"
	AttrReminder  = "cocode.reminder_tier"
	AttrTokensIn  = "cocode.tokens_input"
	AttrTokensOut = "cocode.tokens_output"
)

// InitTracer builds a trace.TracerProvider per cfg. A disabled config
// returns a no-op provider so GetTracer is always safe to call. The
// returned shutdown func flushes and releases the exporter; callers
// should defer it.
func InitTracer(ctx context.Context, cfg Config) (trace.TracerProvider, func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.TracingExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(io.Writer(os.Stderr)))
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	}
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.TracingServiceName),
	))
	if err != nil {
		return nil, nil, err
	}

	rate := cfg.TracingSamplingRate
	if rate <= 0 {
		rate = 1.0
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(rate)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, tp.Shutdown, nil
}

// GetTracer returns a named tracer from the given provider.
func GetTracer(tp trace.TracerProvider, name string) trace.Tracer {
	return tp.Tracer(name)
}
