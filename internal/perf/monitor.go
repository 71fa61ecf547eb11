// Package perf collects web vitals reported by visitors and samples the
// server's own memory use, exporting both as Prometheus gauges.
package perf

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"folio.dev/internal/models"
)

// Monitor keeps the latest performance sample.
type Monitor struct {
	mu       sync.RWMutex
	latest   models.PerformanceSample
	samples  int
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger

	vitals  *prometheus.GaugeVec
	memory  prometheus.Gauge
	reports prometheus.Counter
}

// NewMonitor creates a monitor that resamples memory every interval.
// Metrics are registered on reg when it is non-nil.
func NewMonitor(interval time.Duration, reg prometheus.Registerer, logger *zap.Logger) (*Monitor, error) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		interval: interval,
		now:      time.Now,
		log:      logger.With(zap.String("component", "perf")),
		vitals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_web_vitals",
			Help: "Most recent client-reported web vital, by metric.",
		}, []string{"metric"}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "folio_heap_alloc_bytes",
			Help: "Heap bytes allocated by the server at the last sample.",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_perf_reports_total",
			Help: "Client performance reports received.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.vitals, m.memory, m.reports} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("register perf metrics: %w", err)
			}
		}
	}
	return m, nil
}

// Record stores a client-reported sample. Zero fields keep their previous
// value so partial reports do not erase earlier measurements.
func (m *Monitor) Record(s models.PerformanceSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	merge := func(dst *float64, v float64, name string) {
		if v == 0 {
			return
		}
		*dst = v
		m.vitals.WithLabelValues(name).Set(v)
	}
	merge(&m.latest.FCP, s.FCP, "fcp")
	merge(&m.latest.LCP, s.LCP, "lcp")
	merge(&m.latest.FID, s.FID, "fid")
	merge(&m.latest.CLS, s.CLS, "cls")
	merge(&m.latest.TTFB, s.TTFB, "ttfb")
	merge(&m.latest.FPS, s.FPS, "fps")
	if s.SampledAt.IsZero() {
		s.SampledAt = m.now()
	}
	m.latest.SampledAt = s.SampledAt
	m.samples++
	m.reports.Inc()
}

// Latest returns the merged sample.
func (m *Monitor) Latest() models.PerformanceSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// Samples reports how many client reports were recorded.
func (m *Monitor) Samples() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// SampleMemory reads the heap size now.
func (m *Monitor) SampleMemory() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	v := float64(ms.HeapAlloc)

	m.mu.Lock()
	m.latest.Memory = v
	m.mu.Unlock()
	m.memory.Set(v)
	return v
}

// Run samples memory every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	m.SampleMemory()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v := m.SampleMemory()
			m.log.Debug("memory sampled", zap.Float64("heap_alloc", v))
		}
	}
}
