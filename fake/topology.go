// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/numaheap/api"
)

// Topology is a scripted api.Topology. Each CurrentNode call returns the
// next node in the script, repeating the last one once exhausted, which
// models a thread migrating between nodes.
type Topology struct {
	mu      sync.Mutex
	script  []api.NodeID
	next    int
	queries int
	homing  bool
	nodes   int
}

// NewTopology builds a topology that reports homing and walks script.
func NewTopology(homing bool, script ...api.NodeID) *Topology {
	if len(script) == 0 {
		script = []api.NodeID{0}
	}
	nodes := 1
	for _, n := range script {
		if int(n)+1 > nodes {
			nodes = int(n) + 1
		}
	}
	return &Topology{script: script, homing: homing, nodes: nodes}
}

// CurrentNode implements api.Topology.
func (t *Topology) CurrentNode() api.NodeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queries++
	n := t.script[t.next]
	if t.next < len(t.script)-1 {
		t.next++
	}
	return n
}

// SupportsHoming implements api.Topology.
func (t *Topology) SupportsHoming() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.homing
}

// SetHoming toggles homing support.
func (t *Topology) SetHoming(v bool) {
	t.mu.Lock()
	t.homing = v
	t.mu.Unlock()
}

// Nodes implements api.Topology.
func (t *Topology) Nodes() int { return t.nodes }

// Queries returns how many times CurrentNode was called.
func (t *Topology) Queries() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queries
}

// Context is a LocalityContext that also counts writes.
type Context struct {
	Node   api.NodeID
	Set    bool
	Writes int
}

// CachedNode implements api.LocalityContext.
func (c *Context) CachedNode() (api.NodeID, bool) { return c.Node, c.Set }

// SetCachedNode implements api.LocalityContext.
func (c *Context) SetCachedNode(n api.NodeID) {
	c.Node, c.Set = n, true
	c.Writes++
}

var (
	_ api.Topology        = (*Topology)(nil)
	_ api.LocalityContext = (*Context)(nil)
)
