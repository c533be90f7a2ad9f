// File: api/memory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Address ranges, grain and NUMA node identifiers shared by every layer.

package api

import (
	"fmt"
	"math/bits"
)

// MemoryRange is the half-open address interval [Start, End) in bytes.
type MemoryRange struct {
	Start uintptr
	End   uintptr
}

// NewMemoryRange builds [start, start+size).
func NewMemoryRange(start, size uintptr) MemoryRange {
	return MemoryRange{Start: start, End: start + size}
}

// Size returns the byte length of the range; zero for empty or inverted ranges.
func (r MemoryRange) Size() uintptr {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no bytes.
func (r MemoryRange) Empty() bool { return r.End <= r.Start }

// Contains reports whether sub lies within r. An empty sub is contained
// when its start lies within [r.Start, r.End].
func (r MemoryRange) Contains(sub MemoryRange) bool {
	return sub.Start >= r.Start && sub.End <= r.End && sub.Start <= sub.End
}

// IsAligned reports whether both the start and the length are multiples of grain.
func (r MemoryRange) IsAligned(grain Grain) bool {
	g := uintptr(grain)
	if g == 0 {
		return false
	}
	return r.Start%g == 0 && r.Size()%g == 0
}

func (r MemoryRange) String() string {
	return fmt.Sprintf("[%#x, %#x)", r.Start, r.End)
}

// Grain is the allocation granularity of the regional heap, in bytes.
// It is a power of two fixed at startup.
type Grain uintptr

// Common grain sizes.
const (
	KiB Grain = 1 << 10
	MiB Grain = 1 << 20

	DefaultGrain = 2 * MiB
)

// ValidateGrain returns an error unless g is a power of two greater than zero.
func ValidateGrain(g Grain) error {
	if g == 0 || bits.OnesCount64(uint64(g)) != 1 {
		return NewError(ErrCodeInvalidArgument, "grain must be a power of two").
			WithContext("grain", uint64(g))
	}
	return nil
}

// Bytes returns the grain as a byte count.
func (g Grain) Bytes() uintptr { return uintptr(g) }

// NodeID identifies one NUMA locality domain.
type NodeID int

// NodeUnassigned is carried by threads that never resolved their locality.
const NodeUnassigned NodeID = -1

// Valid reports whether n names a real node.
func (n NodeID) Valid() bool { return n >= 0 }

func (n NodeID) String() string {
	if !n.Valid() {
		return "unassigned"
	}
	return fmt.Sprintf("node%d", int(n))
}
