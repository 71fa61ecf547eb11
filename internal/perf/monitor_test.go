package perf

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"folio.dev/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRecordMergesPartialReports(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMonitor(time.Second, reg, nil)
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.Record(models.PerformanceSample{FCP: 900, LCP: 1800, SampledAt: at})
	m.Record(models.PerformanceSample{CLS: 0.05, FPS: 58})

	got := m.Latest()
	assert.Equal(t, 900.0, got.FCP)
	assert.Equal(t, 1800.0, got.LCP)
	assert.Equal(t, 0.05, got.CLS)
	assert.Equal(t, 58.0, got.FPS)
	assert.False(t, got.SampledAt.Equal(at), "second report stamps its own time")
	assert.Equal(t, 2, m.Samples())

	assert.Equal(t, 1800.0, testutil.ToFloat64(m.vitals.WithLabelValues("lcp")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reports))
	assert.Equal(t, 4, testutil.CollectAndCount(m.vitals))
}

func TestRunSamplesMemory(t *testing.T) {
	m, err := NewMonitor(5*time.Millisecond, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Latest().Memory > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Greater(t, testutil.ToFloat64(m.memory), 0.0)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMonitor(0, reg, nil)
	require.NoError(t, err)
	_, err = NewMonitor(0, reg, nil)
	assert.Error(t, err)
}
