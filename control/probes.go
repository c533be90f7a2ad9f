// control/probes.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probes.

package control

import (
	"runtime"

	"github.com/momentics/numaheap/api"
)

// RegisterPlatformProbes exposes CPU and NUMA topology facts.
func RegisterPlatformProbes(dp *DebugProbes, topo api.Topology) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	if topo == nil {
		return
	}
	dp.RegisterProbe("platform.numa_nodes", func() any {
		return topo.Nodes()
	})
	dp.RegisterProbe("platform.homing", func() any {
		return topo.SupportsHoming()
	})
}
