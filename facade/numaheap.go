// File: facade/numaheap.go
// Unified facade layer for numaheap.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NUMAHeap aggregates the logger, configuration store, metrics, platform
// ports, regional heap and control interface behind a single type.

package facade

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/momentics/numaheap/adapters"
	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/control"
	"github.com/momentics/numaheap/heap"
	"github.com/momentics/numaheap/internal/logger"
	"github.com/momentics/numaheap/platform"
	"github.com/momentics/numaheap/region"
)

// Option overrides a platform port.
type Option func(*NUMAHeap)

// WithPlatform replaces the host memory controller.
func WithPlatform(p api.Platform) Option {
	return func(n *NUMAHeap) { n.plat = p }
}

// WithTopology replaces the host topology.
func WithTopology(t api.Topology) Option {
	return func(n *NUMAHeap) { n.topo = t }
}

// NUMAHeap is the main facade type.
type NUMAHeap struct {
	config  *control.ConfigStore
	metrics *control.Metrics
	control *adapters.ControlAdapter
	plat    api.Platform
	topo    api.Topology
	heap    *heap.Heap
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// New builds the heap described by cfg; nil selects control.DefaultConfig.
func New(cfg *control.Config, opts ...Option) (*NUMAHeap, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &NUMAHeap{config: control.NewConfigStore(cfg)}
	for _, opt := range opts {
		opt(n)
	}

	root := logger.Init(logger.Options{
		Enabled: cfg.Log.Enabled,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	})
	n.log = root.With("component", "facade")

	if n.plat == nil {
		n.plat = platform.New(root)
	}
	if n.topo == nil {
		n.topo = platform.NewTopology(homingOverride(cfg.NUMA.Homing))
	}

	n.metrics = control.NewMetrics(cfg.Metrics.Namespace)
	h, err := heap.New(heap.Config{
		Grain: api.Grain(cfg.Grain),
		Size:  uintptr(cfg.Regions) * uintptr(cfg.Grain),
		NUMA:  cfg.NUMA.Enabled,
	}, n.plat, n.topo, heap.WithLogger(root), heap.WithMetrics(n.metrics))
	if err != nil {
		return nil, errors.Wrap(err, "create heap")
	}
	n.heap = h

	n.control = adapters.NewControlAdapter(n.config, n.topo)
	n.control.RegisterDebugProbe("heap.free", func() any { return h.Stats().Free })
	n.control.RegisterDebugProbe("heap.in_use", func() any { return h.Stats().InUse })
	n.control.RegisterDebugProbe("heap.biased_by_node", func() any { return h.Stats().BiasedByNode })
	n.control.OnReload(n.applyReload)

	n.log.Info("numaheap ready",
		"regions", cfg.Regions, "grain", cfg.Grain.String(),
		"numa", cfg.NUMA.Enabled, "nodes", n.topo.Nodes())
	return n, nil
}

func homingOverride(mode control.HomingMode) *bool {
	var v bool
	switch mode {
	case control.HomingOn:
		v = true
	case control.HomingOff:
	default:
		return nil
	}
	return &v
}

// applyReload re-applies the settings that may change at runtime.
func (n *NUMAHeap) applyReload() {
	cfg := n.config.Current()
	logger.SetLevel(cfg.Log.Level)
	if t, ok := n.topo.(*platform.Topology); ok {
		t.SetHoming(homingOverride(cfg.NUMA.Homing))
	}
	n.log.Info("config reloaded", "level", cfg.Log.Level, "homing", string(cfg.NUMA.Homing))
}

// Allocate hands out a region biased towards the worker owning ctx.
func (n *NUMAHeap) Allocate(ctx api.LocalityContext) (*region.Region, error) {
	return n.heap.Allocate(ctx)
}

// Reclaim returns a region to the heap.
func (n *NUMAHeap) Reclaim(r *region.Region) error {
	return n.heap.Reclaim(r)
}

// Heap exposes the regional heap.
func (n *NUMAHeap) Heap() *heap.Heap { return n.heap }

// Control exposes config, stats and debug probes.
func (n *NUMAHeap) Control() api.Control { return n.control }

// Metrics exposes the prometheus collectors.
func (n *NUMAHeap) Metrics() *control.Metrics { return n.metrics }

// Topology exposes the locality source in use.
func (n *NUMAHeap) Topology() api.Topology { return n.topo }

// Shutdown releases the heap reservation. Safe to call more than once.
func (n *NUMAHeap) Shutdown() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.heap.Close()
}
