// File: region/region.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package region implements the generic fixed-size heap region: an address
// range with a bump-allocation top, optional backing bytes, and an optional
// NUMA capability. Regions built without WithNUMA never talk to the platform.

package region

import (
	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/core/align"
	"github.com/momentics/numaheap/core/numa"
	"github.com/momentics/numaheap/internal/debug"
)

// wordSize is the bump-allocation alignment.
const wordSize = api.Grain(8)

// mangleWord fills mangled regions so stale reads stand out in a debugger.
var mangleWord = [...]byte{0xde, 0xad, 0xbe, 0xef}

// Region is one grain-sized (or smaller) piece of a heap.
type Region struct {
	index uint32
	mr    api.MemoryRange
	top   uintptr
	mem   []byte
	numa  *numa.Space
	ready bool
}

// Option configures a Region.
type Option func(*Region)

// WithNUMA attaches a NUMA capability.
func WithNUMA(sp *numa.Space) Option {
	return func(r *Region) { r.numa = sp }
}

// WithBacking supplies the bytes that back the region's address range.
// They are used for clearing and mangling and by Slice.
func WithBacking(b []byte) Option {
	return func(r *Region) { r.mem = b }
}

// New creates an uninitialized region.
func New(index uint32, opts ...Option) *Region {
	r := &Region{index: index}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize prepares the region for a new owner. clear zeroes the backing,
// mangle fills it with a debug pattern. When a NUMA capability is attached
// the caller's locality is resolved through ctx and the region is biased
// towards that node; ctx may be nil.
func (r *Region) Initialize(mr api.MemoryRange, clear, mangle bool, ctx api.LocalityContext) {
	debug.Assertf(mr.Start <= mr.End, "inverted region range %s", mr)
	if r.mem != nil {
		debug.Assertf(uintptr(len(r.mem)) == mr.Size(),
			"backing of %d bytes does not cover %s", len(r.mem), mr)
	}
	r.mr = mr
	r.top = mr.Start
	if clear {
		clearBytes(r.mem)
	}
	if mangle {
		mangleBytes(r.mem)
	}
	r.ready = true
	if r.numa != nil {
		r.numa.Initialize(r, ctx)
	}
}

// Reclaim ends the current ownership and decommits the region's pages.
func (r *Region) Reclaim() {
	r.top = r.mr.Start
	r.ready = false
	if r.numa != nil {
		r.numa.Teardown(r)
	}
}

// Index returns the region's slot in its heap.
func (r *Region) Index() uint32 { return r.index }

// Range implements numa.Owner.
func (r *Region) Range() api.MemoryRange { return r.mr }

// Contains implements numa.Owner.
func (r *Region) Contains(sub api.MemoryRange) bool { return r.mr.Contains(sub) }

// NUMA returns the attached capability or nil.
func (r *Region) NUMA() *numa.Space { return r.numa }

// PageSize returns the NUMA page size, or zero without a NUMA capability.
func (r *Region) PageSize() uintptr {
	if r.numa == nil {
		return 0
	}
	return r.numa.PageSize()
}

// Initialized reports whether the region is owned (initialized and not reclaimed).
func (r *Region) Initialized() bool { return r.ready }

// Top is the next free address.
func (r *Region) Top() uintptr { return r.top }

// Used returns the number of allocated bytes.
func (r *Region) Used() uintptr { return r.top - r.mr.Start }

// Free returns the number of bytes still available.
func (r *Region) Free() uintptr { return r.mr.End - r.top }

// Allocate bumps top by size rounded up to a word. It fails when the region
// is not initialized or has no room left.
func (r *Region) Allocate(size uintptr) (api.MemoryRange, bool) {
	if !r.ready || size == 0 {
		return api.MemoryRange{}, false
	}
	sz := align.Up(size, wordSize)
	if sz < size || sz > r.Free() {
		return api.MemoryRange{}, false
	}
	out := api.NewMemoryRange(r.top, sz)
	r.top += sz
	return out, true
}

// Slice returns the backing bytes of sub, or nil when the region has no
// backing or sub lies outside it.
func (r *Region) Slice(sub api.MemoryRange) []byte {
	if r.mem == nil || !r.mr.Contains(sub) {
		return nil
	}
	off := sub.Start - r.mr.Start
	return r.mem[off : off+sub.Size() : off+sub.Size()]
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func mangleBytes(b []byte) {
	for i := 0; i < len(b); i += len(mangleWord) {
		copy(b[i:], mangleWord[:])
	}
}
