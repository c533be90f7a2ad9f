// File: core/align/align.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package align computes grain-aligned sub-ranges. All functions are pure;
// the grain is assumed to be a power of two (checked once by
// api.ValidateGrain when the heap is configured).

package align

import "github.com/momentics/numaheap/api"

// Up rounds p up to a multiple of grain.
func Up(p uintptr, grain api.Grain) uintptr {
	mask := uintptr(grain) - 1
	return (p + mask) &^ mask
}

// Down rounds p down to a multiple of grain.
func Down(p uintptr, grain api.Grain) uintptr {
	return p &^ (uintptr(grain) - 1)
}

// IsPowerOfTwo reports whether g is a usable grain.
func IsPowerOfTwo(g api.Grain) bool {
	return g != 0 && g&(g-1) == 0
}

// Range returns the largest sub-range of r whose start and length are
// multiples of grain. When no such sub-range exists the zero MemoryRange is
// returned.
func Range(r api.MemoryRange, grain api.Grain) api.MemoryRange {
	if r.Empty() {
		return api.MemoryRange{}
	}
	start := Up(r.Start, grain)
	// Up wraps to 0 near the top of the address space.
	if start < r.Start {
		return api.MemoryRange{}
	}
	end := Down(r.End, grain)
	if end <= start {
		return api.MemoryRange{}
	}
	return api.MemoryRange{Start: start, End: end}
}
