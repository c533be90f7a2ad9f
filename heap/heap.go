// File: heap/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package heap is a regional heap: one reserved address range carved into
// grain-sized regions that are handed to one owner at a time. Regions are
// biased towards the allocating worker's NUMA node on Allocate and
// decommitted on Reclaim.

package heap

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/control"
	"github.com/momentics/numaheap/core/align"
	"github.com/momentics/numaheap/core/numa"
	"github.com/momentics/numaheap/internal/logger"
	"github.com/momentics/numaheap/region"
)

// Config describes the heap layout.
type Config struct {
	Grain api.Grain
	// Size is the usable heap size. When it is not a multiple of Grain the
	// last region is shorter and is never biased.
	Size uintptr
	// NUMA attaches a NUMA capability to every region.
	NUMA bool
	// Clear zeroes a region before handing it out; Mangle fills it with a
	// debug pattern instead.
	Clear  bool
	Mangle bool
}

// Option customizes a Heap.
type Option func(*Heap)

// WithLogger sets the heap logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) { h.log = l }
}

// WithMetrics reports region events and free-queue depth.
func WithMetrics(m *control.Metrics) Option {
	return func(h *Heap) { h.metrics = m }
}

type nodeCounter struct {
	biased atomic.Uint64
	_      cpu.CacheLinePad
}

// Heap owns the reservation and all of its regions.
type Heap struct {
	cfg     Config
	plat    api.Platform
	topo    api.Topology
	log     *slog.Logger
	metrics *control.Metrics
	mgr     *numa.Manager

	mem     []byte
	base    uintptr
	regions []*region.Region
	perNode []nodeCounter

	// busy is read-held while a region's backing is touched outside mu;
	// Close takes it exclusively before unmapping.
	busy sync.RWMutex

	mu     sync.Mutex
	free   *queue.Queue
	owned  []bool
	closed bool
}

// New reserves cfg.Size bytes (grain aligned) from plat and carves regions.
func New(cfg Config, plat api.Platform, topo api.Topology, opts ...Option) (*Heap, error) {
	if err := api.ValidateGrain(cfg.Grain); err != nil {
		return nil, err
	}
	if cfg.Size == 0 {
		return nil, errors.Wrap(api.ErrInvalidArgument, "heap size is zero")
	}
	if cfg.NUMA && topo == nil {
		return nil, errors.Wrap(api.ErrInvalidArgument, "NUMA heap needs a topology")
	}
	h := &Heap{cfg: cfg, plat: plat, topo: topo, free: queue.New()}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logger.Or(h.log).With("component", "heap")

	// Over-reserve one grain so the heap base can be aligned.
	mem, err := plat.Reserve(cfg.Size + cfg.Grain.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "reserve heap")
	}
	h.mem = mem
	h.base = align.Up(uintptr(unsafe.Pointer(&mem[0])), cfg.Grain)
	off := h.base - uintptr(unsafe.Pointer(&mem[0]))

	if cfg.NUMA {
		var obs numa.Observer
		if h.metrics != nil {
			obs = h.metrics
		}
		h.mgr = numa.NewManager(cfg.Grain, plat, topo, h.log, obs)
		h.perNode = make([]nodeCounter, max(topo.Nodes(), 1))
	}

	n := int((cfg.Size + cfg.Grain.Bytes() - 1) / cfg.Grain.Bytes())
	h.regions = make([]*region.Region, n)
	h.owned = make([]bool, n)
	for i := 0; i < n; i++ {
		lo := uintptr(i) * cfg.Grain.Bytes()
		hi := min(lo+cfg.Grain.Bytes(), cfg.Size)
		opts := []region.Option{region.WithBacking(mem[off+lo : off+hi : off+hi])}
		if h.mgr != nil {
			opts = append(opts, region.WithNUMA(h.mgr.NewSpace()))
		}
		r := region.New(uint32(i), opts...)
		h.regions[i] = r
		h.free.Add(r)
	}
	h.setFreeGauge()
	h.log.Info("heap reserved",
		"base", h.base, "size", cfg.Size, "grain", uint64(cfg.Grain),
		"regions", n, "numa", cfg.NUMA)
	return h, nil
}

// rangeOf returns the address range of region i.
func (h *Heap) rangeOf(i int) api.MemoryRange {
	lo := uintptr(i) * h.cfg.Grain.Bytes()
	hi := min(lo+h.cfg.Grain.Bytes(), h.cfg.Size)
	return api.MemoryRange{Start: h.base + lo, End: h.base + hi}
}

// Allocate takes the oldest free region and initializes it for the caller,
// biasing it towards the node resolved through ctx.
func (h *Heap) Allocate(ctx api.LocalityContext) (*region.Region, error) {
	h.busy.RLock()
	defer h.busy.RUnlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, api.ErrHeapClosed
	}
	if h.free.Length() == 0 {
		h.mu.Unlock()
		return nil, errors.Wrapf(api.ErrResourceExhausted, "all %d regions in use", len(h.regions))
	}
	r := h.free.Remove().(*region.Region)
	h.owned[r.Index()] = true
	h.setFreeGaugeLocked()
	h.mu.Unlock()

	// The region left the free queue, so this caller is its only owner.
	r.Initialize(h.rangeOf(int(r.Index())), h.cfg.Clear, h.cfg.Mangle, ctx)
	if sp := r.NUMA(); sp != nil && sp.PageSize() != 0 {
		if n := int(sp.Node()); n >= 0 && n < len(h.perNode) {
			h.perNode[n].biased.Add(1)
		}
	}
	return r, nil
}

// Reclaim decommits r and returns it to the free queue. The region leaves
// the owned state before it is decommitted, so a concurrent second Reclaim
// of the same region fails instead of queueing it twice.
func (h *Heap) Reclaim(r *region.Region) error {
	if r == nil || int(r.Index()) >= len(h.regions) || h.regions[r.Index()] != r {
		return errors.Wrap(api.ErrNotFound, "region does not belong to this heap")
	}
	h.busy.RLock()
	defer h.busy.RUnlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return api.ErrHeapClosed
	}
	if !h.owned[r.Index()] {
		h.mu.Unlock()
		return errors.Wrapf(api.ErrInvalidArgument, "region %d is already free", r.Index())
	}
	h.owned[r.Index()] = false
	h.mu.Unlock()

	r.Reclaim()

	h.mu.Lock()
	h.free.Add(r)
	h.setFreeGaugeLocked()
	h.mu.Unlock()
	return nil
}

// Close waits for in-flight Allocate and Reclaim calls, then releases the
// reservation. Regions still held become invalid.
func (h *Heap) Close() error {
	h.busy.Lock()
	defer h.busy.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.log.Info("heap closed")
	return errors.Wrap(h.plat.Unreserve(h.mem), "unreserve heap")
}

// Grain returns the region size.
func (h *Heap) Grain() api.Grain { return h.cfg.Grain }

// Base returns the first address of the heap.
func (h *Heap) Base() uintptr { return h.base }

// Region returns region i, or nil.
func (h *Heap) Region(i int) *region.Region {
	if i < 0 || i >= len(h.regions) {
		return nil
	}
	return h.regions[i]
}

// Stats is a point-in-time view of the heap.
type Stats struct {
	Regions      int
	Free         int
	InUse        int
	Grain        api.Grain
	BiasedByNode map[int]uint64
}

// Stats reports occupancy and per-node bias counts.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	free := h.free.Length()
	h.mu.Unlock()
	st := Stats{
		Regions:      len(h.regions),
		Free:         free,
		InUse:        len(h.regions) - free,
		Grain:        h.cfg.Grain,
		BiasedByNode: make(map[int]uint64, len(h.perNode)),
	}
	for i := range h.perNode {
		if v := h.perNode[i].biased.Load(); v > 0 {
			st.BiasedByNode[i] = v
		}
	}
	return st
}

func (h *Heap) setFreeGauge() {
	h.mu.Lock()
	h.setFreeGaugeLocked()
	h.mu.Unlock()
}

func (h *Heap) setFreeGaugeLocked() {
	if h.metrics != nil {
		h.metrics.FreeRegions.Set(float64(h.free.Length()))
	}
}
