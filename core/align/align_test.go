package align

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/numaheap/api"
)

const (
	mib = uintptr(1 << 20)
	g2m = 2 * api.MiB
)

func TestUpDown(t *testing.T) {
	assert.Equal(t, uintptr(0), Up(0, g2m))
	assert.Equal(t, 2*mib, Up(1, g2m))
	assert.Equal(t, 2*mib, Up(2*mib, g2m))
	assert.Equal(t, uintptr(0), Down(2*mib-1, g2m))
	assert.Equal(t, 2*mib, Down(3*mib, g2m))
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(g2m))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(3*api.MiB))
}

func TestRangeScenarios(t *testing.T) {
	tests := []struct {
		name string
		in   api.MemoryRange
		want api.MemoryRange
	}{
		{"trailing fragment", api.MemoryRange{Start: 0, End: 3 * mib}, api.MemoryRange{Start: 0, End: 2 * mib}},
		{"sub-grain", api.MemoryRange{Start: 0, End: mib}, api.MemoryRange{}},
		{"both ends unaligned", api.MemoryRange{Start: mib, End: 7 * mib}, api.MemoryRange{Start: 2 * mib, End: 6 * mib}},
		{"straddles one boundary", api.MemoryRange{Start: mib, End: 3 * mib}, api.MemoryRange{}},
		{"already aligned", api.MemoryRange{Start: 4 * mib, End: 8 * mib}, api.MemoryRange{Start: 4 * mib, End: 8 * mib}},
		{"empty", api.MemoryRange{Start: 4 * mib, End: 4 * mib}, api.MemoryRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Range(tt.in, g2m))
		})
	}
}

func TestRangeTopOfAddressSpace(t *testing.T) {
	top := ^uintptr(0)
	got := Range(api.MemoryRange{Start: top - mib, End: top}, g2m)
	assert.True(t, got.Empty())
}

// Random ranges: the result is contained, aligned and a fixed point.
func TestRangeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		grain := api.Grain(1) << uint(rng.Intn(24))
		start := uintptr(rng.Int63n(1 << 32))
		r := api.MemoryRange{Start: start, End: start + uintptr(rng.Int63n(1<<26))}

		a := Range(r, grain)
		if a.Empty() {
			require.Equal(t, api.MemoryRange{}, a)
			require.Less(t, Down(r.End, grain), Up(r.Start, grain)+uintptr(grain),
				"non-empty aligned sub-range missed for %s grain %d", r, grain)
			continue
		}
		require.True(t, r.Contains(a), "%s not inside %s", a, r)
		require.True(t, a.IsAligned(grain), "%s not aligned to %d", a, grain)
		require.Equal(t, a, Range(a, grain))
	}
}
