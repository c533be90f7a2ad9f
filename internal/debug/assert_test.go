package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/numaheap/api"
)

func recoverValue(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}

func TestAssert(t *testing.T) {
	require.NotPanics(t, func() { Assert(true, "fine") })
	v := recoverValue(func() { Assertf(false, "broken %d", 7) })
	require.True(t, api.IsContractViolation(v))
	assert.Equal(t, "broken 7", v.(*api.Error).Message)
}

func TestAssertRange(t *testing.T) {
	const g = 2 * api.MiB
	outer := api.MemoryRange{Start: 0, End: 4 << 20}

	require.NotPanics(t, func() { AssertRange(outer, api.MemoryRange{Start: 0, End: 2 << 20}, g) })

	v := recoverValue(func() { AssertRange(outer, api.MemoryRange{Start: 1 << 20, End: 3 << 20}, g) })
	assert.True(t, api.IsContractViolation(v))

	v = recoverValue(func() { AssertRange(outer, api.MemoryRange{Start: 4 << 20, End: 6 << 20}, g) })
	require.True(t, api.IsContractViolation(v))
	assert.Contains(t, v.(*api.Error).Message, "escapes")
}
