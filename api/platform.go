// File: api/platform.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ports to the host platform: virtual-memory control, NUMA topology and the
// per-thread locality binding. Production implementations live in package
// platform; recording fakes live in package fake.

package api

// PlatformMemory controls how pages backing an address range are mapped.
// Every call is a best-effort request: an error means the platform ignored
// it and the range keeps its default placement.
type PlatformMemory interface {
	// RepartitionPages asks the platform to map r with pages suited to
	// pageSize, breaking down larger pages when required.
	RepartitionPages(r MemoryRange, pageSize uintptr) error

	// ReleasePages uncommits the backing of r. Must be idempotent.
	ReleasePages(r MemoryRange, pageSize uintptr) error

	// BindFirstTouch makes future first-touched pages of r local to node.
	BindFirstTouch(r MemoryRange, node NodeID) error

	// PageSize reports the page size currently backing r.
	PageSize(r MemoryRange) uintptr
}

// Reserver hands out raw address space for a heap.
type Reserver interface {
	// Reserve maps size bytes of uncommitted, read-write address space.
	Reserve(size uintptr) ([]byte, error)
	// Unreserve returns a mapping obtained from Reserve.
	Unreserve(b []byte) error
}

// Platform bundles memory control with address-space reservation.
type Platform interface {
	PlatformMemory
	Reserver
}

// Topology answers NUMA locality questions about the calling thread.
type Topology interface {
	// CurrentNode returns the node of the CPU the caller runs on.
	CurrentNode() NodeID
	// SupportsHoming reports whether threads stay on one node once bound.
	SupportsHoming() bool
	// Nodes returns the number of configured nodes (at least 1).
	Nodes() int
}

// LocalityContext carries one thread's cached node binding. It is owned by
// exactly one worker and is never shared, so it needs no synchronization.
type LocalityContext interface {
	CachedNode() (NodeID, bool)
	SetCachedNode(NodeID)
}
