//go:build !linux

// File: platform/memory_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package platform

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/pkg/errors"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/internal/logger"
)

// Memory is the degraded api.Platform for systems without NUMA controls.
// Regions keep default placement; reservations come from the Go heap.
type Memory struct {
	basePage uintptr
	log      *slog.Logger
}

// New returns the degraded memory controller.
func New(log *slog.Logger) *Memory {
	return &Memory{basePage: uintptr(os.Getpagesize()), log: logger.Or(log)}
}

func unsupported(op string) error {
	return errors.Wrapf(api.ErrNotSupported, "%s on %s", op, runtime.GOOS)
}

// RepartitionPages implements api.PlatformMemory.
func (m *Memory) RepartitionPages(api.MemoryRange, uintptr) error { return unsupported("repartition") }

// ReleasePages implements api.PlatformMemory.
func (m *Memory) ReleasePages(api.MemoryRange, uintptr) error { return unsupported("release") }

// BindFirstTouch implements api.PlatformMemory.
func (m *Memory) BindFirstTouch(api.MemoryRange, api.NodeID) error { return unsupported("bind") }

// PageSize implements api.PlatformMemory.
func (m *Memory) PageSize(api.MemoryRange) uintptr { return m.basePage }

// Reserve implements api.Reserver.
func (m *Memory) Reserve(size uintptr) ([]byte, error) { return make([]byte, size), nil }

// Unreserve implements api.Reserver.
func (m *Memory) Unreserve([]byte) error { return nil }

var _ api.Platform = (*Memory)(nil)
