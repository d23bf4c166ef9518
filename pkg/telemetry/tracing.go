package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for Loom engines.
const defaultTracerName = "loom"

// TracingConfig configures the OpenTelemetry tracing.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "loom").
	TracerName string

	// Filter decides per pump whether to trace it.
	// If nil, all pumps are traced.
	Filter func() bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry tracing.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithPumpFilter sets a filter function for pumps.
func WithPumpFilter(filter func() bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// defaultTracingConfig returns the default tracing configuration.
func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
	}
}

// Tracing wraps engine pumps in OpenTelemetry spans.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure it in your main() before pumping:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
type Tracing struct {
	config TracingConfig
}

// NewTracing resolves a tracer from the global provider.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &Tracing{config: config}
}

// StartPump opens a span for one pump. It returns the span context and
// an end function that records the observation and closes the span.
// Safe to call on a nil receiver, which traces nothing.
func (t *Tracing) StartPump(ctx context.Context) (context.Context, func(PumpObservation)) {
	if t == nil {
		return ctx, func(PumpObservation) {}
	}
	if t.config.Filter != nil && !t.config.Filter() {
		return ctx, func(PumpObservation) {}
	}

	spanCtx, span := t.config.tracer.Start(
		ctx,
		"loom.pump",
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return spanCtx, func(o PumpObservation) {
		span.SetAttributes(
			attribute.Int("loom.flags", o.Flags),
			attribute.Int("loom.messages_applied", o.Applied),
			attribute.Int("loom.messages_dropped", o.Dropped),
			attribute.Int("loom.rounds", o.Rounds),
			attribute.Int("loom.renders", o.Renders),
			attribute.Int("loom.nodes", o.Nodes),
		)
		span.SetStatus(codes.Ok, "")
		span.End()
	}
}
