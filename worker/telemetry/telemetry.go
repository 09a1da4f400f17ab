package telemetry

import (
	"context"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/snow-ghost/jigsaw/core"
	"github.com/snow-ghost/jigsaw/pkg/observability"
	"github.com/snow-ghost/jigsaw/pkg/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry reports solver progress to the observability stack and keeps an expvar
// snapshot of the current run.
type Telemetry struct {
	obs *observability.Manager

	// Progress of the current run
	Progress       *expvar.Map
	Generation     *expvar.Int
	BestCost       *expvar.Float
	MeanCost       *expvar.Float
	ExhaustedSlots *expvar.Int
	Status         *expvar.String
	RunID          *expvar.String

	publishOnce sync.Once
}

// NewTelemetry creates a new telemetry instance. The expvar map is not published
// until Publish is called, so several instances can coexist.
func NewTelemetry(obs *observability.Manager) *Telemetry {
	t := &Telemetry{
		obs:            obs,
		Progress:       new(expvar.Map).Init(),
		Generation:     new(expvar.Int),
		BestCost:       new(expvar.Float),
		MeanCost:       new(expvar.Float),
		ExhaustedSlots: new(expvar.Int),
		Status:         new(expvar.String),
		RunID:          new(expvar.String),
	}
	t.Progress.Set("generation", t.Generation)
	t.Progress.Set("best_cost", t.BestCost)
	t.Progress.Set("mean_cost", t.MeanCost)
	t.Progress.Set("exhausted_slots", t.ExhaustedSlots)
	t.Progress.Set("status", t.Status)
	t.Progress.Set("run_id", t.RunID)
	t.Status.Set("idle")

	return t
}

// NewNopTelemetry discards logs and spans but still tracks progress and metrics.
func NewNopTelemetry() *Telemetry {
	return NewTelemetry(observability.NewNopManager())
}

// Publish exposes the progress map under name in the process-wide expvar registry.
func (t *Telemetry) Publish(name string) {
	t.publishOnce.Do(func() {
		if expvar.Get(name) == nil {
			expvar.Publish(name, t.Progress)
		}
	})
}

// Observability returns the underlying manager
func (t *Telemetry) Observability() *observability.Manager {
	return t.obs
}

// RunStarted opens the run span. The caller must pass the span to RunFinished.
func (t *Telemetry) RunStarted(ctx context.Context, runID string, dims core.Dims, population, generations int) (context.Context, trace.Span) {
	t.RunID.Set(runID)
	t.Status.Set("running")
	t.Generation.Set(0)
	t.ExhaustedSlots.Set(0)

	ctx = observability.WithRunID(ctx, runID)
	return t.obs.StartRunSpan(ctx, runID, dims.Rows, dims.Cols, population, generations)
}

// StartPhase opens a span for a setup phase; finish it with PhaseDone.
func (t *Telemetry) StartPhase(ctx context.Context, phase string) (context.Context, trace.Span) {
	return t.obs.GetTracer().StartPhaseSpan(ctx, phase)
}

// PhaseDone closes a setup phase span and records its duration.
func (t *Telemetry) PhaseDone(ctx context.Context, span trace.Span, phase string, duration time.Duration, err error) {
	defer span.End()
	if err != nil {
		tracing.RecordSpanError(span, err)
		return
	}
	tracing.RecordSpanDuration(span, duration)
	t.obs.RecordPhase(ctx, phase, duration)
}

// StartGeneration opens a span for one generation.
func (t *Telemetry) StartGeneration(ctx context.Context, generation int) (context.Context, trace.Span) {
	return t.obs.GetTracer().StartGenerationSpan(ctx, generation)
}

// GenerationDone closes the generation span and reports its statistics.
func (t *Telemetry) GenerationDone(ctx context.Context, span trace.Span, stats core.GenerationStats) {
	defer span.End()

	tracing.RecordSpanCost(span, stats.BestCost, stats.MeanCost)
	tracing.RecordSpanDuration(span, stats.Duration)
	tracing.AddSpanAttributes(span, map[string]interface{}{
		"ga.attempts":  stats.Attempts,
		"ga.failures":  stats.Failures,
		"ga.exhausted": stats.Exhausted,
	})
	tracing.RecordSpanSuccess(span)

	t.Generation.Set(int64(stats.Generation))
	t.BestCost.Set(stats.BestCost)
	t.MeanCost.Set(stats.MeanCost)

	t.obs.RecordGeneration(ctx, stats.Generation, stats.BestCost, stats.MeanCost,
		stats.Attempts-stats.Failures, stats.Failures, stats.Duration)
	t.obs.RecordCacheStats(stats.CacheHits, stats.CacheMisses)
}

// GenerationFailed closes the generation span with err.
func (t *Telemetry) GenerationFailed(span trace.Span, err error) {
	defer span.End()
	tracing.RecordSpanError(span, err)
}

// AttemptFailed logs a sampled failed assembly attempt.
func (t *Telemetry) AttemptFailed(ctx context.Context, generation, slot, attempt int) {
	t.obs.LogAssemblyRetry(ctx, generation, slot, attempt)
}

// SlotExhausted reports a slot that fell back to cloning a parent.
func (t *Telemetry) SlotExhausted(ctx context.Context, generation, slot, attempts int) {
	t.ExhaustedSlots.Add(1)
	t.obs.RecordAssemblyExhausted(ctx, generation, slot, attempts)
}

// RunFinished closes the run span and records the outcome.
func (t *Telemetry) RunFinished(ctx context.Context, span trace.Span, generations int, cost float64, duration time.Duration, stoppedEarly bool, err error) {
	defer span.End()

	if err != nil {
		t.Status.Set("failed")
		tracing.RecordSpanError(span, err)
		t.obs.RecordRunCompletion(ctx, "failed", generations, cost, duration, stoppedEarly)
		return
	}

	t.Status.Set("done")
	tracing.RecordSpanCost(span, cost, cost)
	tracing.RecordSpanSuccess(span)
	t.obs.RecordRunCompletion(ctx, "ok", generations, cost, duration, stoppedEarly)
}

// HealthHandler returns a simple health check
func (t *Telemetry) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"jigsaw-solver"}`))
}

// ProgressHandler returns the progress of the current run as JSON
func (t *Telemetry) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(t.Progress.String()))
}
