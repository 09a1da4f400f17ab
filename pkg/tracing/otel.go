package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps OpenTelemetry tracer
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	// JaegerEndpoint is the collector URL; empty disables export.
	JaegerEndpoint string
	Environment    string
}

// NewTracer creates a new OpenTelemetry tracer. Without a Jaeger endpoint the tracer
// is a no-op and the global provider is left untouched.
func NewTracer(config Config) (*Tracer, error) {
	if config.JaegerEndpoint == "" {
		return NewNopTracer(), nil
	}

	// Create Jaeger exporter
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	// Create resource
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create trace provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// Set global tracer provider
	otel.SetTracerProvider(tp)

	// Set global propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		tracer:   tp.Tracer(config.ServiceName),
		provider: tp,
	}, nil
}

// NewNopTracer returns a tracer whose spans are discarded
func NewNopTracer() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer("")}
}

// NewTracerWithProvider uses an existing SDK provider, which the tracer then owns
func NewTracerWithProvider(tp *sdktrace.TracerProvider, name string) *Tracer {
	return &Tracer{tracer: tp.Tracer(name), provider: tp}
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartRunSpan starts the span covering a whole solver run
func (t *Tracer) StartRunSpan(ctx context.Context, rows, cols, population, generations int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.Int("puzzle.rows", rows),
		attribute.Int("puzzle.cols", cols),
		attribute.Int("ga.population", population),
		attribute.Int("ga.generations", generations),
	}

	return t.tracer.Start(ctx, "solver.run", trace.WithAttributes(attrs...))
}

// StartPhaseSpan starts a span for a setup phase
func (t *Tracer) StartPhaseSpan(ctx context.Context, phase string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("phase", phase),
	}

	return t.tracer.Start(ctx, "solver.build", trace.WithAttributes(attrs...))
}

// StartGenerationSpan starts a span for one generation
func (t *Tracer) StartGenerationSpan(ctx context.Context, generation int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.Int("ga.generation", generation),
	}

	return t.tracer.Start(ctx, "solver.generation", trace.WithAttributes(attrs...))
}

// AddSpanAttributes adds attributes to a span
func AddSpanAttributes(span trace.Span, attrs map[string]interface{}) {
	for key, value := range attrs {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(key, v))
		case int:
			span.SetAttributes(attribute.Int(key, v))
		case int64:
			span.SetAttributes(attribute.Int64(key, v))
		case float64:
			span.SetAttributes(attribute.Float64(key, v))
		case bool:
			span.SetAttributes(attribute.Bool(key, v))
		case []string:
			span.SetAttributes(attribute.StringSlice(key, v))
		default:
			span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}
}

// RecordSpanError records an error in a span
func RecordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordSpanSuccess records success in a span
func RecordSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// RecordSpanDuration records duration in a span
func RecordSpanDuration(span trace.Span, duration time.Duration) {
	span.SetAttributes(attribute.Float64("duration_ms", float64(duration.Nanoseconds())/1e6))
}

// RecordSpanCost records the best and mean cost in a span
func RecordSpanCost(span trace.Span, best, mean float64) {
	span.SetAttributes(
		attribute.Float64("cost.best", best),
		attribute.Float64("cost.mean", mean),
	)
}

// Shutdown flushes and stops the provider, if the tracer owns one
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// GetTraceID extracts trace ID from context
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
