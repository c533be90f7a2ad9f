// File: core/numa/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package numa

import (
	"log/slog"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/core/align"
	"github.com/momentics/numaheap/internal/debug"
	"github.com/momentics/numaheap/internal/logger"
)

// Owner is the slice of the generic region contract the engines need.
type Owner interface {
	Range() api.MemoryRange
	Contains(sub api.MemoryRange) bool
}

// Option customizes an engine.
type Option func(*engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *engine) { e.log = l }
}

// WithObserver sets the event sink.
func WithObserver(o Observer) Option {
	return func(e *engine) {
		if o != nil {
			e.obs = o
		}
	}
}

type engine struct {
	grain api.Grain
	mem   api.PlatformMemory
	log   *slog.Logger
	obs   Observer
}

func newEngine(grain api.Grain, mem api.PlatformMemory, opts []Option) engine {
	debug.Assertf(align.IsPowerOfTwo(grain), "grain %d is not a power of two", uint64(grain))
	debug.Assert(mem != nil, "nil platform memory")
	e := engine{grain: grain, mem: mem, obs: nopObserver{}}
	for _, opt := range opts {
		opt(&e)
	}
	e.log = logger.Or(e.log)
	return e
}

// alignedRange returns the grain-aligned part of owner and whether it is
// non-empty. A non-empty result that escapes owner panics.
func (e *engine) alignedRange(owner Owner) (api.MemoryRange, bool) {
	mr := owner.Range()
	aligned := align.Range(mr, e.grain)
	if aligned.Empty() {
		return aligned, false
	}
	debug.AssertRange(mr, aligned, e.grain)
	debug.Assert(owner.Contains(aligned), "region does not contain its aligned range")
	return aligned, true
}

func (e *engine) degraded(op Op, r api.MemoryRange, err error) {
	e.log.Warn("platform request ignored, using default placement",
		"op", string(op), "range", r.String(), "err", err)
	e.obs.PlatformDegraded(op)
}

// Grain returns the alignment unit.
func (e *engine) Grain() api.Grain { return e.grain }

// BiasEngine binds regions to a NUMA node.
type BiasEngine struct {
	engine
}

// NewBiasEngine panics unless grain is a power of two.
func NewBiasEngine(grain api.Grain, mem api.PlatformMemory, opts ...Option) *BiasEngine {
	return &BiasEngine{engine: newEngine(grain, mem, opts)}
}

// Bias rebinds the aligned part of owner to node and records the resulting
// page size in space. Sub-grain owners are left alone.
func (b *BiasEngine) Bias(owner Owner, space *Space, node api.NodeID) {
	aligned, ok := b.alignedRange(owner)
	if !ok {
		b.log.Debug("bias skipped, no grain-aligned range", "region", owner.Range().String())
		b.obs.BiasSkipped()
		return
	}
	// Repartition before uncommit so no large page outlives the release.
	if err := b.mem.RepartitionPages(aligned, b.grain.Bytes()); err != nil {
		b.degraded(OpRepartition, aligned, err)
	}
	if err := b.mem.ReleasePages(aligned, b.grain.Bytes()); err != nil {
		b.degraded(OpRelease, aligned, err)
	}
	if err := b.mem.BindFirstTouch(aligned, node); err != nil {
		b.degraded(OpBind, aligned, err)
	}
	if space != nil {
		space.pageSize = b.mem.PageSize(aligned)
	}
	b.obs.RegionBiased(node, aligned)
}

// ReleaseEngine decommits regions without rebinding them.
type ReleaseEngine struct {
	engine
}

// NewReleaseEngine panics unless grain is a power of two.
func NewReleaseEngine(grain api.Grain, mem api.PlatformMemory, opts ...Option) *ReleaseEngine {
	return &ReleaseEngine{engine: newEngine(grain, mem, opts)}
}

// Release uncommits the aligned part of owner. Repeating it is harmless.
func (r *ReleaseEngine) Release(owner Owner) {
	aligned, ok := r.alignedRange(owner)
	if !ok {
		r.obs.ReleaseSkipped()
		return
	}
	if err := r.mem.ReleasePages(aligned, r.grain.Bytes()); err != nil {
		r.degraded(OpRelease, aligned, err)
	}
	r.obs.RegionReleased(aligned)
}
