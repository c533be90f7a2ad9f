package control

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/core/numa"
	"github.com/momentics/numaheap/fake"
)

func TestMetricsRegistry_Basic(t *testing.T) {
	reg := NewMetricsRegistry()
	reg.Set("heap.regions", 42)
	reg.Set("heap.status", "ok")

	metrics := reg.GetSnapshot()
	assert.Equal(t, 42, metrics["heap.regions"])
	assert.Equal(t, "ok", metrics["heap.status"])
	assert.False(t, reg.Updated().IsZero())
}

func TestMetrics_Observer(t *testing.T) {
	m := NewMetrics("test")
	m.RegionBiased(1, api.MemoryRange{Start: 0, End: 2 << 20})
	m.RegionBiased(1, api.MemoryRange{Start: 0, End: 2 << 20})
	m.BiasSkipped()
	m.RegionReleased(api.MemoryRange{})
	m.ReleaseSkipped()
	m.PlatformDegraded(numa.OpBind)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.biased.WithLabelValues("1")))
	assert.Equal(t, float64(4<<20), testutil.ToFloat64(m.biasedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.biasSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.released))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releaseSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degraded.WithLabelValues("bind")))

	n, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

// The engines report through Metrics end to end.
func TestMetrics_WiredIntoEngines(t *testing.T) {
	m := NewMetrics("wired")
	p := fake.NewPlatform(4096)
	mgr := numa.NewManager(2*api.MiB, p, fake.NewTopology(true, 0), nil, m)

	sp := mgr.NewSpace()
	o := &rangeOwner{api.MemoryRange{Start: 0, End: 1 << 20}}
	sp.Initialize(o, nil)
	sp.Teardown(o)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.biasSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releaseSkipped))
}

type rangeOwner struct{ mr api.MemoryRange }

func (o *rangeOwner) Range() api.MemoryRange            { return o.mr }
func (o *rangeOwner) Contains(sub api.MemoryRange) bool { return o.mr.Contains(sub) }

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp, fake.NewTopology(true, 0, 1))

	assert.Equal(t, []string{"platform.cpus", "platform.homing", "platform.numa_nodes"}, dp.Names())
	state := dp.DumpState()
	assert.Equal(t, 2, state["platform.numa_nodes"])
	assert.Equal(t, true, state["platform.homing"])
}
