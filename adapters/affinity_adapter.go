// File: adapters/affinity_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// Description:
//   Adapter implementing the api.Affinity interface, delegating to
//   internal concurrency primitives for CPU and NUMA pinning. A worker
//   pinned to one node's CPUs is homed, so its cached locality stays valid.
//
// Package adapters provides glue code between the core API contracts
// and the internal implementation.

package adapters

import (
	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/internal/concurrency"
)

// AffinityAdapter implements api.Affinity using internal concurrency functions.
// It is owned by the goroutine it pins.
type AffinityAdapter struct {
	currentCPU  int
	currentNUMA api.NodeID
	pinned      bool
}

// NewAffinityAdapter creates an unbound adapter.
func NewAffinityAdapter() *AffinityAdapter {
	return &AffinityAdapter{
		currentCPU:  -1,
		currentNUMA: api.NodeUnassigned,
	}
}

// Pin confines the calling thread to cpuID, or to every CPU of numaID when
// cpuID is -1. An unassigned numaID means the node the caller runs on now.
func (a *AffinityAdapter) Pin(cpuID int, numaID api.NodeID) error {
	if !numaID.Valid() {
		numaID = api.NodeID(concurrency.CurrentNUMANodeID())
		if !numaID.Valid() {
			numaID = 0
		}
	}
	if err := concurrency.PinCurrentThread(int(numaID), cpuID); err != nil {
		return err
	}
	a.currentCPU = cpuID
	a.currentNUMA = numaID
	a.pinned = true
	return nil
}

// Unpin clears any CPU/NUMA binding, allowing the OS scheduler to migrate the thread.
func (a *AffinityAdapter) Unpin() error {
	if err := concurrency.UnpinCurrentThread(); err != nil {
		return err
	}
	a.pinned = false
	a.currentCPU = -1
	a.currentNUMA = api.NodeUnassigned
	return nil
}

// Get returns the currently effective CPU and NUMA IDs for this adapter.
func (a *AffinityAdapter) Get() (cpuID int, numaID api.NodeID, err error) {
	return a.currentCPU, a.currentNUMA, nil
}

// ImmutableDescriptor returns a snapshot of the current binding state.
func (a *AffinityAdapter) ImmutableDescriptor() api.AffinityDescriptor {
	return api.AffinityDescriptor{
		CPUID:  a.currentCPU,
		NUMAID: a.currentNUMA,
		Pinned: a.pinned,
	}
}

var _ api.Affinity = (*AffinityAdapter)(nil)
