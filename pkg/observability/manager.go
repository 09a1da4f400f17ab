package observability

import (
	"context"
	"time"

	"github.com/snow-ghost/jigsaw/pkg/logging"
	"github.com/snow-ghost/jigsaw/pkg/metrics"
	"github.com/snow-ghost/jigsaw/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Manager manages all observability components
type Manager struct {
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
	LogOutput      string
}

// NewManager creates a new observability manager
func NewManager(config Config) (*Manager, error) {
	// Create metrics
	prometheusMetrics := metrics.NewPrometheusMetrics()

	// Create tracer
	tracerConfig := tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		JaegerEndpoint: config.JaegerEndpoint,
		Environment:    config.Environment,
	}

	tracer, err := tracing.NewTracer(tracerConfig)
	if err != nil {
		return nil, err
	}

	// Create logger
	output := config.LogOutput
	if output == "" {
		output = "stdout"
	}
	loggerConfig := logging.Config{
		Level:     config.LogLevel,
		Format:    config.LogFormat,
		Output:    output,
		AddCaller: true,
		AddStack:  false,
	}

	logger, err := logging.NewLogger(loggerConfig)
	if err != nil {
		return nil, err
	}

	return &Manager{
		metrics: prometheusMetrics,
		tracer:  tracer,
		logger:  logger,
	}, nil
}

// NewNopManager returns a manager that records metrics but discards logs and spans
func NewNopManager() *Manager {
	return &Manager{
		metrics: metrics.NewPrometheusMetrics(),
		tracer:  tracing.NewNopTracer(),
		logger:  logging.NewNopLogger(),
	}
}

// NewManagerWith assembles a manager from existing components
func NewManagerWith(m *metrics.PrometheusMetrics, t *tracing.Tracer, l *logging.Logger) *Manager {
	return &Manager{metrics: m, tracer: t, logger: l}
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *metrics.PrometheusMetrics {
	return m.metrics
}

// GetTracer returns the tracer instance
func (m *Manager) GetTracer() *tracing.Tracer {
	return m.tracer
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() *logging.Logger {
	return m.logger
}

// StartRunSpan starts the span for a solver run and logs its start
func (m *Manager) StartRunSpan(ctx context.Context, runID string, rows, cols, population, generations int) (context.Context, trace.Span) {
	ctx, span := m.tracer.StartRunSpan(ctx, rows, cols, population, generations)
	span.SetAttributes(attribute.String("run_id", runID))

	m.logger.WithRunID(ctx, runID).WithFields(map[string]interface{}{
		"rows":        rows,
		"cols":        cols,
		"population":  population,
		"generations": generations,
	}).Info("Solver run started")

	return ctx, span
}

// RecordPhase records and logs a completed setup phase
func (m *Manager) RecordPhase(ctx context.Context, phase string, duration time.Duration) {
	m.metrics.RecordPhase(phase, duration)
	m.logger.LogPhase(ctx, phase, duration)
}

// RecordGeneration records generation metrics and logs the summary
func (m *Manager) RecordGeneration(ctx context.Context, generation int, best, mean float64, succeeded, failed int, duration time.Duration) {
	m.metrics.RecordGeneration(best, mean, duration)
	m.metrics.RecordAssemblies(succeeded, failed)
	m.logger.LogGeneration(ctx, generation, best, mean, succeeded+failed, duration)
}

// RecordCacheStats records fitness cache counters
func (m *Manager) RecordCacheStats(hits, misses int64) {
	m.metrics.RecordCacheStats(hits, misses)
}

// LogAssemblyRetry logs a sampled failed assembly attempt
func (m *Manager) LogAssemblyRetry(ctx context.Context, generation, slot, attempt int) {
	m.logger.LogAssemblyRetry(ctx, generation, slot, attempt)
}

// RecordAssemblyExhausted records and logs a slot that fell back to cloning a parent
func (m *Manager) RecordAssemblyExhausted(ctx context.Context, generation, slot, attempts int) {
	m.metrics.RecordAssemblyExhausted()
	m.logger.LogAssemblyExhausted(ctx, generation, slot, attempts)
}

// RecordRunCompletion records the run outcome
func (m *Manager) RecordRunCompletion(ctx context.Context, status string, generations int, cost float64, duration time.Duration, stoppedEarly bool) {
	m.metrics.RecordRun(status)
	if status == "ok" {
		m.logger.LogRunComplete(ctx, generations, cost, duration, stoppedEarly)
		return
	}
	m.logger.WithFields(map[string]interface{}{
		"status":      status,
		"generations": generations,
	}).Warn("Solver run ended early")
}

// Shutdown shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	// Shutdown tracer
	if err := m.tracer.Shutdown(ctx); err != nil {
		return err
	}

	// Sync logger
	if err := m.logger.Sync(); err != nil {
		return err
	}

	return nil
}

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID adds run ID to context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunIDFromContext extracts run ID from context
func GetRunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}
