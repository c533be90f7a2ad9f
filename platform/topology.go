// File: platform/topology.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package platform

import (
	"sync/atomic"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/internal/concurrency"
)

// Topology answers locality questions from sysfs and getcpu(2).
type Topology struct {
	sys    *concurrency.Topology
	homing atomic.Pointer[bool]
}

// NewTopology returns the host topology. homing forces the homing answer;
// nil asks the calling thread's affinity mask on every call.
func NewTopology(homing *bool) *Topology {
	t := &Topology{sys: concurrency.SystemTopology()}
	t.SetHoming(homing)
	return t
}

// SetHoming replaces the homing override; nil restores detection.
func (t *Topology) SetHoming(homing *bool) {
	if homing != nil {
		v := *homing
		homing = &v
	}
	t.homing.Store(homing)
}

// CurrentNode implements api.Topology.
func (t *Topology) CurrentNode() api.NodeID {
	n := concurrency.CurrentNUMANodeID()
	if n < 0 {
		return api.NodeUnassigned
	}
	return api.NodeID(n)
}

// SupportsHoming implements api.Topology. Without an override, a thread is
// homed when its affinity mask lies within one node.
func (t *Topology) SupportsHoming() bool {
	if h := t.homing.Load(); h != nil {
		return *h
	}
	_, ok := concurrency.CurrentThreadHome()
	return ok
}

// Nodes implements api.Topology.
func (t *Topology) Nodes() int { return t.sys.NumNodes() }

var _ api.Topology = (*Topology)(nil)
