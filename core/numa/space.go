// File: core/numa/space.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package numa

import (
	"log/slog"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/core/locality"
)

// State is the NUMA lifecycle of a region.
type State int

const (
	Uninitialized State = iota
	Biased
	Released
)

func (s State) String() string {
	switch s {
	case Biased:
		return "biased"
	case Released:
		return "released"
	default:
		return "uninitialized"
	}
}

// Manager holds the engines and resolver shared by every NUMA region of a heap.
type Manager struct {
	bias     *BiasEngine
	release  *ReleaseEngine
	resolver *locality.Resolver
}

// NewManager wires both engines over mem and a resolver over topo.
func NewManager(grain api.Grain, mem api.PlatformMemory, topo api.Topology, log *slog.Logger, obs Observer) *Manager {
	opts := []Option{WithLogger(log), WithObserver(obs)}
	return &Manager{
		bias:     NewBiasEngine(grain, mem, opts...),
		release:  NewReleaseEngine(grain, mem, opts...),
		resolver: locality.NewResolver(topo, log),
	}
}

// NewSpace returns a fresh per-region capability.
func (m *Manager) NewSpace() *Space {
	return &Space{mgr: m, node: api.NodeUnassigned}
}

// Grain returns the alignment unit.
func (m *Manager) Grain() api.Grain { return m.bias.Grain() }

// Resolver returns the locality resolver.
func (m *Manager) Resolver() *locality.Resolver { return m.resolver }

// Space is the NUMA capability attached to one region. The allocator hands a
// region to a single owner at a time, so Space is not synchronized.
type Space struct {
	mgr      *Manager
	pageSize uintptr
	node     api.NodeID
	state    State
}

// Initialize resolves the caller's node and biases owner towards it.
func (s *Space) Initialize(owner Owner, ctx api.LocalityContext) api.NodeID {
	node := s.mgr.resolver.Resolve(ctx)
	s.pageSize = 0
	s.mgr.bias.Bias(owner, s, node)
	s.node = node
	s.state = Biased
	return node
}

// Teardown decommits owner's pages.
func (s *Space) Teardown(owner Owner) {
	s.mgr.release.Release(owner)
	s.state = Released
}

// PageSize is the page size backing the region after its last bias; zero
// when the region was never biased or is shorter than one grain.
func (s *Space) PageSize() uintptr { return s.pageSize }

// Node is the node the region was last biased towards.
func (s *Space) Node() api.NodeID { return s.node }

// State reports the lifecycle state.
func (s *Space) State() State { return s.state }
