// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics. Region lifecycle counters are exported through a private
// prometheus registry; MetricsRegistry keeps ad-hoc snapshot values for the
// Control interface.

package control

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/core/numa"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last Set.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// Metrics exports region lifecycle events to prometheus. It implements
// numa.Observer.
type Metrics struct {
	reg *prometheus.Registry

	biased         *prometheus.CounterVec
	biasSkipped    prometheus.Counter
	released       prometheus.Counter
	releaseSkipped prometheus.Counter
	biasedBytes    prometheus.Counter
	degraded       *prometheus.CounterVec

	// FreeRegions is maintained by the heap.
	FreeRegions prometheus.Gauge
}

// NewMetrics registers all collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		biased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_biased_total",
			Help:      "Regions bound to a NUMA node, by node.",
		}, []string{"node"}),
		biasSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bias_skipped_total",
			Help:      "Bias requests on regions shorter than one grain.",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_released_total",
			Help:      "Regions whose pages were decommitted.",
		}),
		releaseSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_skipped_total",
			Help:      "Release requests on regions shorter than one grain.",
		}),
		biasedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "biased_bytes_total",
			Help:      "Bytes of address space rebound to a node.",
		}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "platform_degraded_total",
			Help:      "Platform memory requests that failed and fell back to default placement.",
		}, []string{"op"}),
		FreeRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "free_regions",
			Help:      "Regions waiting in the heap free queue.",
		}),
	}
	m.reg.MustRegister(m.biased, m.biasSkipped, m.released, m.releaseSkipped,
		m.biasedBytes, m.degraded, m.FreeRegions)
	return m
}

// Registry exposes the prometheus registry for an HTTP handler or a pusher.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// RegionBiased implements numa.Observer.
func (m *Metrics) RegionBiased(node api.NodeID, aligned api.MemoryRange) {
	m.biased.WithLabelValues(strconv.Itoa(int(node))).Inc()
	m.biasedBytes.Add(float64(aligned.Size()))
}

// BiasSkipped implements numa.Observer.
func (m *Metrics) BiasSkipped() { m.biasSkipped.Inc() }

// RegionReleased implements numa.Observer.
func (m *Metrics) RegionReleased(api.MemoryRange) { m.released.Inc() }

// ReleaseSkipped implements numa.Observer.
func (m *Metrics) ReleaseSkipped() { m.releaseSkipped.Inc() }

// PlatformDegraded implements numa.Observer.
func (m *Metrics) PlatformDegraded(op numa.Op) { m.degraded.WithLabelValues(string(op)).Inc() }

var _ numa.Observer = (*Metrics)(nil)
