// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-platform CPU and NUMA affinity management with runtime detection.

package concurrency

import (
	"runtime"
	"sync"
)

var (
	topoOnce sync.Once
	topo     *Topology
)

// SystemTopology returns the machine topology, loaded once. Machines without
// NUMA sysfs are treated as a single node.
func SystemTopology() *Topology {
	topoOnce.Do(func() {
		t, err := platformTopology()
		if err != nil {
			t = SingleNode(runtime.NumCPU())
		}
		topo = t
	})
	return topo
}

// PreferredCPUID returns the first CPU of numaNode, or 0.
func PreferredCPUID(numaNode int) int {
	if numaNode < 0 {
		return 0
	}
	if cpus := SystemTopology().CPUs(numaNode); len(cpus) > 0 {
		return cpus[0]
	}
	return 0
}

// CurrentNUMANodeID returns the NUMA node of the CPU running the caller, or -1.
func CurrentNUMANodeID() int {
	return platformCurrentNUMANodeID()
}

// CurrentThreadHome reports the node the calling thread is confined to by
// its CPU affinity mask.
func CurrentThreadHome() (int, bool) {
	cpus, err := platformThreadCPUs()
	if err != nil {
		return -1, false
	}
	return SystemTopology().HomeNode(cpus)
}

// PinCurrentThread locks the goroutine to its OS thread and confines the
// thread to cpuID, or to every CPU of numaNode when cpuID is negative.
func PinCurrentThread(numaNode, cpuID int) error {
	runtime.LockOSThread()
	cpus := []int{cpuID}
	if cpuID < 0 {
		cpus = SystemTopology().CPUs(numaNode)
	}
	return platformSetThreadCPUs(cpus)
}

// UnpinCurrentThread lets the thread run anywhere and unlocks the goroutine.
func UnpinCurrentThread() error {
	defer runtime.UnlockOSThread()
	var all []int
	for _, n := range SystemTopology().Nodes() {
		all = append(all, SystemTopology().CPUs(n)...)
	}
	return platformSetThreadCPUs(all)
}

// NumCPUs returns the number of logical CPUs.
func NumCPUs() int {
	return runtime.NumCPU()
}

// NUMANodes returns the number of NUMA nodes.
func NUMANodes() int {
	return SystemTopology().NumNodes()
}
