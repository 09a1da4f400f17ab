package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGeneration(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordGeneration(12.5, 40, 20*time.Millisecond)
	m.RecordGeneration(10, 30, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.BestCost))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.MeanCost))
}

func TestRecordAssemblies(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordAssemblies(4, 9)
	m.RecordAssemblies(2, 0)
	m.RecordAssemblyExhausted()

	assert.Equal(t, 6.0, testutil.ToFloat64(m.AssemblyAttemptsTotal.WithLabelValues("ok")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.AssemblyAttemptsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssemblyExhaustedTotal))
}

func TestSeparateRegistries(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()

	a.RecordRun("ok")
	a.RecordCacheStats(7, 3)
	a.RecordPhase("index", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 0, testutil.CollectAndCount(b.RunsTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(a.CacheHits))

	families, err := a.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
