package numa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/fake"
)

func TestSpace_Lifecycle(t *testing.T) {
	p := fake.NewPlatform(page)
	topo := fake.NewTopology(true, 1)
	m := NewManager(grain, p, topo, nil, nil)
	o := &owner{mr: api.MemoryRange{Start: 0, End: 3 * mib}}
	ctx := &fake.Context{Node: api.NodeUnassigned}

	sp := m.NewSpace()
	assert.Equal(t, Uninitialized, sp.State())
	assert.Equal(t, api.NodeUnassigned, sp.Node())

	node := sp.Initialize(o, ctx)
	assert.Equal(t, api.NodeID(1), node)
	assert.Equal(t, Biased, sp.State())
	assert.Equal(t, page, sp.PageSize())

	binds := p.CallsFor(fake.OpBind)
	require.Len(t, binds, 1)
	assert.Equal(t, api.NodeID(1), binds[0].Node)
	assert.Equal(t, api.MemoryRange{Start: 0, End: 2 * mib}, binds[0].Range)

	sp.Teardown(o)
	assert.Equal(t, Released, sp.State())
	assert.Len(t, p.CallsFor(fake.OpRelease), 2)

	// Reuse goes straight back to biased and overwrites the page size.
	p.SetPageSize(2 * mib)
	sp.Initialize(o, ctx)
	assert.Equal(t, Biased, sp.State())
	assert.Equal(t, 2*mib, sp.PageSize())
	assert.Equal(t, 1, topo.Queries())
}

func TestSpace_SubGrainKeepsDefaultPageSize(t *testing.T) {
	p := fake.NewPlatform(page)
	m := NewManager(grain, p, fake.NewTopology(true, 0), nil, nil)
	sp := m.NewSpace()

	sp.Initialize(&owner{mr: api.MemoryRange{Start: 0, End: mib}}, nil)

	assert.Equal(t, Biased, sp.State())
	assert.Zero(t, sp.PageSize())
	assert.Empty(t, p.Calls())
	assert.Equal(t, grain, m.Grain())
	assert.NotNil(t, m.Resolver())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "biased", Biased.String())
	assert.Equal(t, "released", Released.String())
}
