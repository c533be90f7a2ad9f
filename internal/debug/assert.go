// File: internal/debug/assert.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contract assertions. A failed assertion means allocator bookkeeping is
// corrupted; continuing would place memory on an undefined node, so the
// helpers panic with a contract-violation *api.Error instead of returning.

package debug

import (
	"fmt"

	"github.com/momentics/numaheap/api"
)

// Assert panics with a contract violation when cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		panic(api.NewError(api.ErrCodeContractViolation, msg))
	}
}

// Assertf is Assert with a formatted message.
func Assertf(cond bool, format string, a ...any) {
	if !cond {
		panic(api.NewError(api.ErrCodeContractViolation, fmt.Sprintf(format, a...)))
	}
}

// AssertRange panics unless sub is grain-aligned and lies inside outer.
func AssertRange(outer, sub api.MemoryRange, grain api.Grain) {
	if !sub.IsAligned(grain) {
		panic(api.NewError(api.ErrCodeContractViolation, "bad alignment").
			WithContext("range", sub.String()).
			WithContext("grain", uint64(grain)))
	}
	if !outer.Contains(sub) {
		panic(api.NewError(api.ErrCodeContractViolation, "aligned range escapes region").
			WithContext("region", outer.String()).
			WithContext("range", sub.String()))
	}
}
