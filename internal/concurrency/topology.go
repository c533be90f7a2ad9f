// File: internal/concurrency/topology.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SysNodePath is where Linux publishes NUMA nodes.
const SysNodePath = "/sys/devices/system/node"

// Topology maps NUMA nodes to their CPUs.
type Topology struct {
	nodes    []int
	nodeCPUs map[int][]int
	cpuNode  map[int]int
}

// SingleNode is the topology of a machine without NUMA information.
func SingleNode(ncpu int) *Topology {
	t := &Topology{nodes: []int{0}, nodeCPUs: map[int][]int{}, cpuNode: map[int]int{}}
	for c := 0; c < ncpu; c++ {
		t.nodeCPUs[0] = append(t.nodeCPUs[0], c)
		t.cpuNode[c] = 0
	}
	return t
}

// LoadTopology reads nodeN/cpulist entries under root.
func LoadTopology(root string) (*Topology, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "read NUMA sysfs")
	}
	t := &Topology{nodeCPUs: map[int][]int{}, cpuNode: map[int]int{}}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, "node") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(name, "node"))
		if err != nil {
			continue
		}
		t.nodes = append(t.nodes, id)
		data, err := os.ReadFile(filepath.Join(root, name, "cpulist"))
		if err != nil {
			continue
		}
		cpus, err := ParseCPUList(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, errors.Wrapf(err, "node %d cpulist", id)
		}
		t.nodeCPUs[id] = cpus
		for _, c := range cpus {
			t.cpuNode[c] = id
		}
	}
	if len(t.nodes) == 0 {
		return nil, errors.Errorf("no NUMA nodes under %s", root)
	}
	sort.Ints(t.nodes)
	return t, nil
}

// ParseCPUList parses the kernel list format, e.g. "0-3,8,10-11".
func ParseCPUList(s string) ([]int, error) {
	var cpus []int
	if s == "" {
		return cpus, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, errors.Wrapf(err, "cpu list %q", s)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(hi); err != nil {
				return nil, errors.Wrapf(err, "cpu list %q", s)
			}
		}
		if end < start {
			return nil, errors.Errorf("cpu list %q: descending range %q", s, part)
		}
		for c := start; c <= end; c++ {
			cpus = append(cpus, c)
		}
	}
	return cpus, nil
}

// Nodes returns the node ids in ascending order.
func (t *Topology) Nodes() []int { return append([]int(nil), t.nodes...) }

// NumNodes returns the number of NUMA nodes.
func (t *Topology) NumNodes() int { return len(t.nodes) }

// CPUs returns the CPUs of node.
func (t *Topology) CPUs(node int) []int { return t.nodeCPUs[node] }

// NodeOfCPU returns the node owning cpu, or -1.
func (t *Topology) NodeOfCPU(cpu int) int {
	if n, ok := t.cpuNode[cpu]; ok {
		return n
	}
	return -1
}

// HomeNode returns the single node all cpus belong to. ok is false when the
// set is empty or spans nodes.
func (t *Topology) HomeNode(cpus []int) (node int, ok bool) {
	node = -1
	for _, c := range cpus {
		n := t.NodeOfCPU(c)
		if n < 0 || (node >= 0 && n != node) {
			return -1, false
		}
		node = n
	}
	return node, node >= 0
}
