// Package api
// Author: momentics@gmail.com
//
// CPU/NUMA affinity and thread pinning definitions.

package api

// Affinity controls execution on particular CPUs/NUMA nodes.
type Affinity interface {
	// Pin locks the current goroutine to its OS thread and restricts the
	// thread to the CPUs of numaID (or to cpuID when it is not -1).
	Pin(cpuID int, numaID NodeID) error
	// Unpin removes affinity.
	Unpin() error
	// Get returns current CPU and NUMA node.
	Get() (cpuID int, numaID NodeID, err error)
}

// AffinityDescriptor is an immutable snapshot of a binding.
type AffinityDescriptor struct {
	CPUID  int
	NUMAID NodeID
	Pinned bool
}
