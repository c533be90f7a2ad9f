// File: core/locality/resolver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package locality resolves the NUMA node a worker should bias its regions
// towards. The per-worker cache is an explicit api.LocalityContext rather
// than ambient thread state, so each worker owns and mutates only its own.

package locality

import (
	"log/slog"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/internal/logger"
)

// Resolver maps a locality context to a node using the platform topology.
type Resolver struct {
	topo api.Topology
	log  *slog.Logger
}

// NewResolver builds a resolver over topo. A nil logger selects logger.L.
func NewResolver(topo api.Topology, log *slog.Logger) *Resolver {
	return &Resolver{topo: topo, log: logger.Or(log)}
}

// Resolve returns the node for ctx. A cached binding is trusted only when the
// platform keeps threads homed on one node; otherwise the current node is
// queried and cached again. A nil ctx resolves without caching.
func (r *Resolver) Resolve(ctx api.LocalityContext) api.NodeID {
	if ctx != nil {
		if node, ok := ctx.CachedNode(); ok && node.Valid() && r.topo.SupportsHoming() {
			return node
		}
	}
	node := r.topo.CurrentNode()
	if ctx != nil {
		ctx.SetCachedNode(node)
	}
	r.log.Debug("locality resolved", "node", node)
	return node
}

// Topology exposes the underlying topology.
func (r *Resolver) Topology() api.Topology { return r.topo }

// Binding is the default LocalityContext: one per worker goroutine that
// keeps itself on a single OS thread.
type Binding struct {
	node api.NodeID
	set  bool
}

// NewBinding returns an unassigned binding.
func NewBinding() *Binding { return &Binding{node: api.NodeUnassigned} }

// CachedNode implements api.LocalityContext.
func (b *Binding) CachedNode() (api.NodeID, bool) { return b.node, b.set }

// SetCachedNode implements api.LocalityContext.
func (b *Binding) SetCachedNode(n api.NodeID) {
	b.node = n
	b.set = true
}

var _ api.LocalityContext = (*Binding)(nil)
