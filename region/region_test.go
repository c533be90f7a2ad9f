package region

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/core/numa"
	"github.com/momentics/numaheap/fake"
)

const mib = uintptr(1 << 20)

func TestRegion_WithoutNUMA(t *testing.T) {
	r := New(3)
	r.Initialize(api.MemoryRange{Start: 0, End: 2 * mib}, false, false, nil)

	assert.Equal(t, uint32(3), r.Index())
	assert.True(t, r.Initialized())
	assert.Nil(t, r.NUMA())
	assert.Zero(t, r.PageSize())
	assert.Nil(t, r.Slice(api.MemoryRange{Start: 0, End: 8}))

	r.Reclaim()
	assert.False(t, r.Initialized())
}

func TestRegion_BiasScenario(t *testing.T) {
	p := fake.NewPlatform(4096)
	m := numa.NewManager(2*api.MiB, p, fake.NewTopology(true, 1), nil, nil)
	r := New(0, WithNUMA(m.NewSpace()))

	r.Initialize(api.MemoryRange{Start: 0, End: 3 * mib}, false, false, &fake.Context{Node: api.NodeUnassigned})

	aligned := api.MemoryRange{Start: 0, End: 2 * mib}
	require.Len(t, p.Calls(), 3)
	for _, c := range p.Calls() {
		assert.Equal(t, aligned, c.Range, c.String())
	}
	assert.Equal(t, api.NodeID(1), p.CallsFor(fake.OpBind)[0].Node)
	assert.Equal(t, uintptr(4096), r.PageSize())
	assert.Equal(t, numa.Biased, r.NUMA().State())

	p.Reset()
	r.Reclaim()
	r.Reclaim()
	rel := p.CallsFor(fake.OpRelease)
	require.Len(t, rel, 2)
	assert.Equal(t, rel[0], rel[1])
	assert.Equal(t, numa.Released, r.NUMA().State())
}

func TestRegion_SubGrainScenario(t *testing.T) {
	p := fake.NewPlatform(4096)
	m := numa.NewManager(2*api.MiB, p, fake.NewTopology(true, 0), nil, nil)
	r := New(0, WithNUMA(m.NewSpace()))

	r.Initialize(api.MemoryRange{Start: 0, End: mib}, false, false, nil)
	r.Reclaim()

	assert.Empty(t, p.Calls())
	assert.Zero(t, r.PageSize())
}

func TestRegion_AllocateAndSlice(t *testing.T) {
	mem := make([]byte, 64*1024)
	base := uintptr(unsafe.Pointer(&mem[0]))
	r := New(0, WithBacking(mem))

	_, ok := r.Allocate(16)
	require.False(t, ok, "allocation before initialize")

	mr := api.NewMemoryRange(base, uintptr(len(mem)))
	r.Initialize(mr, true, false, nil)

	a, ok := r.Allocate(5)
	require.True(t, ok)
	assert.Equal(t, api.NewMemoryRange(base, 8), a)
	assert.Equal(t, uintptr(8), r.Used())

	b, ok := r.Allocate(16)
	require.True(t, ok)
	assert.Equal(t, base+8, b.Start)
	copy(r.Slice(b), "region-payload!!")
	assert.Equal(t, "region-payload!!", string(mem[8:24]))

	_, ok = r.Allocate(r.Free() + 1)
	assert.False(t, ok)
	_, ok = r.Allocate(0)
	assert.False(t, ok)

	r.Reclaim()
	assert.Equal(t, mr.Start, r.Top())
}

func TestRegion_ClearAndMangle(t *testing.T) {
	mem := make([]byte, 4096)
	base := uintptr(unsafe.Pointer(&mem[0]))
	mr := api.NewMemoryRange(base, uintptr(len(mem)))
	r := New(0, WithBacking(mem))

	r.Initialize(mr, false, true, nil)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, mem[4092:])

	r.Initialize(mr, true, false, nil)
	assert.Equal(t, make([]byte, 4096), mem)
}

func TestRegion_BackingMismatchPanics(t *testing.T) {
	r := New(0, WithBacking(make([]byte, 10)))
	var v any
	func() {
		defer func() { v = recover() }()
		r.Initialize(api.MemoryRange{Start: 0, End: 20}, false, false, nil)
	}()
	assert.True(t, api.IsContractViolation(v))
}
