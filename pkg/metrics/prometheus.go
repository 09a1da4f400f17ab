package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Generation metrics
	GenerationsTotal   prometheus.Counter
	GenerationDuration prometheus.Histogram
	BestCost           prometheus.Gauge
	MeanCost           prometheus.Gauge

	// Assembly metrics
	AssemblyAttemptsTotal  *prometheus.CounterVec
	AssemblyExhaustedTotal prometheus.Counter

	// Setup metrics
	PhaseDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Gauge
	CacheMisses prometheus.Gauge

	// Run metrics
	RunsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new Prometheus metrics instance on its own registry,
// so several solvers can live in one process.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,

		// Generation metrics
		GenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "jigsaw_generations_total",
				Help: "Total number of completed generations",
			},
		),

		GenerationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jigsaw_generation_duration_seconds",
				Help:    "Wall time of one generation in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		BestCost: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jigsaw_best_cost",
				Help: "Cost of the best chromosome in the latest generation",
			},
		),

		MeanCost: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jigsaw_mean_cost",
				Help: "Mean cost of the latest generation",
			},
		),

		// Assembly metrics
		AssemblyAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jigsaw_assembly_attempts_total",
				Help: "Total number of child assembly attempts",
			},
			[]string{"result"},
		),

		AssemblyExhaustedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "jigsaw_assembly_exhausted_total",
				Help: "Total number of offspring slots that fell back to cloning a parent",
			},
		),

		// Setup metrics
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jigsaw_phase_duration_seconds",
				Help:    "Duration of setup phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),

		// Cache metrics
		CacheHits: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jigsaw_fitness_cache_hits",
				Help: "Fitness cache hits so far",
			},
		),

		CacheMisses: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jigsaw_fitness_cache_misses",
				Help: "Fitness cache misses so far",
			},
		),

		// Run metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jigsaw_runs_total",
				Help: "Total number of solver runs",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry holding these metrics
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordGeneration records a completed generation
func (m *PrometheusMetrics) RecordGeneration(best, mean float64, duration time.Duration) {
	m.GenerationsTotal.Inc()
	m.GenerationDuration.Observe(duration.Seconds())
	m.BestCost.Set(best)
	m.MeanCost.Set(mean)
}

// RecordAssemblies records assembly attempts, of which one per slot succeeded
func (m *PrometheusMetrics) RecordAssemblies(succeeded, failed int) {
	if succeeded > 0 {
		m.AssemblyAttemptsTotal.WithLabelValues("ok").Add(float64(succeeded))
	}
	if failed > 0 {
		m.AssemblyAttemptsTotal.WithLabelValues("failed").Add(float64(failed))
	}
}

// RecordAssemblyExhausted records a slot that ran out of attempts
func (m *PrometheusMetrics) RecordAssemblyExhausted() {
	m.AssemblyExhaustedTotal.Inc()
}

// RecordPhase records how long a setup phase took
func (m *PrometheusMetrics) RecordPhase(phase string, duration time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordCacheStats records the fitness cache counters
func (m *PrometheusMetrics) RecordCacheStats(hits, misses int64) {
	m.CacheHits.Set(float64(hits))
	m.CacheMisses.Set(float64(misses))
}

// RecordRun records the outcome of a run
func (m *PrometheusMetrics) RecordRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}
