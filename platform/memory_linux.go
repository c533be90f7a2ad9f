//go:build linux

// File: platform/memory_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package platform

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/internal/logger"
)

const (
	thpPath     = "/sys/kernel/mm/transparent_hugepage/enabled"
	thpSizePath = "/sys/kernel/mm/transparent_hugepage/hpage_pmd_size"

	// mempolicy modes from linux/mempolicy.h
	mpolPreferred = 1
)

// Memory is the Linux api.Platform.
type Memory struct {
	basePage uintptr
	hugePage uintptr // zero when transparent huge pages are unavailable
	log      *slog.Logger

	mu    sync.Mutex
	pages map[uintptr]uintptr // range start -> page size chosen by RepartitionPages
}

// New probes page sizes and returns the host memory controller.
func New(log *slog.Logger) *Memory {
	m := &Memory{
		basePage: uintptr(unix.Getpagesize()),
		log:      logger.Or(log),
		pages:    make(map[uintptr]uintptr),
	}
	m.hugePage = probeHugePage()
	m.log.Debug("platform memory", "base_page", m.basePage, "huge_page", m.hugePage)
	return m
}

func probeHugePage() uintptr {
	mode, err := os.ReadFile(thpPath)
	if err != nil || strings.Contains(string(mode), "[never]") {
		return 0
	}
	raw, err := os.ReadFile(thpSizePath)
	if err != nil {
		return 0
	}
	sz, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return uintptr(sz)
}

func madvise(r api.MemoryRange, advice int) error {
	_, _, errno := unix.Syscall(unix.SYS_MADVISE, r.Start, r.Size(), uintptr(advice))
	if errno != 0 {
		return errors.Wrapf(errno, "madvise(%d) %s", advice, r)
	}
	return nil
}

// RepartitionPages implements api.PlatformMemory. Huge pages are requested
// when pageSize covers a whole huge page; otherwise existing huge pages are
// split back to base pages.
func (m *Memory) RepartitionPages(r api.MemoryRange, pageSize uintptr) error {
	chosen := m.basePage
	advice := unix.MADV_NOHUGEPAGE
	if m.hugePage != 0 && pageSize >= m.hugePage && r.Start%m.hugePage == 0 {
		chosen = m.hugePage
		advice = unix.MADV_HUGEPAGE
	}
	err := madvise(r, advice)
	if err != nil {
		chosen = m.basePage
	}
	m.mu.Lock()
	m.pages[r.Start] = chosen
	m.mu.Unlock()
	return err
}

// ReleasePages implements api.PlatformMemory.
func (m *Memory) ReleasePages(r api.MemoryRange, _ uintptr) error {
	return madvise(r, unix.MADV_DONTNEED)
}

// BindFirstTouch implements api.PlatformMemory with a preferred-node policy,
// so allocation falls back to other nodes instead of failing when node is full.
func (m *Memory) BindFirstTouch(r api.MemoryRange, node api.NodeID) error {
	if !node.Valid() {
		return errors.Wrapf(api.ErrInvalidArgument, "bind %s to %s", r, node)
	}
	mask := make([]uint64, int(node)/64+1)
	mask[int(node)/64] |= 1 << (uint(node) % 64)
	_, _, errno := unix.Syscall6(unix.SYS_MBIND, r.Start, r.Size(), mpolPreferred,
		uintptr(unsafe.Pointer(&mask[0])), uintptr(len(mask)*64+1), 0)
	if errno != 0 {
		return errors.Wrapf(errno, "mbind %s to %s", r, node)
	}
	return nil
}

// PageSize implements api.PlatformMemory.
func (m *Memory) PageSize(r api.MemoryRange) uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sz, ok := m.pages[r.Start]; ok {
		return sz
	}
	return m.basePage
}

// Reserve implements api.Reserver with an anonymous, uncommitted mapping.
func (m *Memory) Reserve(size uintptr) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_NORESERVE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", size)
	}
	return b, nil
}

// Unreserve implements api.Reserver. Unmapping twice is not an error.
func (m *Memory) Unreserve(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	start := uintptr(unsafe.Pointer(&b[0]))
	m.mu.Lock()
	for k := range m.pages {
		if k >= start && k < start+uintptr(len(b)) {
			delete(m.pages, k)
		}
	}
	m.mu.Unlock()
	if err := unix.Munmap(b); err != nil && !errors.Is(err, unix.EINVAL) {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

var _ api.Platform = (*Memory)(nil)
