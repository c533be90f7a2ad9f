// Package fake
// Author: momentics <momentics@gmail.com>
//
// Recording fakes for the platform ports. Tests drive the biasing and
// release engines against these instead of real page tables.

package fake

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/numaheap/api"
)

// Op names a platform memory primitive.
type Op string

const (
	OpRepartition Op = "repartition"
	OpRelease     Op = "release"
	OpBind        Op = "bind"
)

// Call is one recorded platform request.
type Call struct {
	Op       Op
	Range    api.MemoryRange
	PageSize uintptr
	Node     api.NodeID
}

func (c Call) String() string {
	switch c.Op {
	case OpBind:
		return fmt.Sprintf("%s %s %s", c.Op, c.Range, c.Node)
	default:
		return fmt.Sprintf("%s %s page=%d", c.Op, c.Range, c.PageSize)
	}
}

// Platform is an api.Platform that records every memory request.
type Platform struct {
	mu       sync.Mutex
	calls    []Call
	fail     map[Op]error
	delay    map[Op]time.Duration
	pageSize uintptr

	reserved int
}

// NewPlatform creates a recorder reporting pageSize for every range.
func NewPlatform(pageSize uintptr) *Platform {
	return &Platform{pageSize: pageSize, fail: make(map[Op]error), delay: make(map[Op]time.Duration)}
}

// FailOn makes every subsequent op return err. A nil err clears it.
func (p *Platform) FailOn(op Op, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.fail, op)
		return
	}
	p.fail[op] = err
}

// Delay makes every subsequent op sleep for d after it is recorded.
func (p *Platform) Delay(op Op, d time.Duration) {
	p.mu.Lock()
	p.delay[op] = d
	p.mu.Unlock()
}

// SetPageSize changes the page size reported by PageSize.
func (p *Platform) SetPageSize(sz uintptr) {
	p.mu.Lock()
	p.pageSize = sz
	p.mu.Unlock()
}

func (p *Platform) record(c Call) error {
	p.mu.Lock()
	p.calls = append(p.calls, c)
	err, d := p.fail[c.Op], p.delay[c.Op]
	p.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
	return err
}

// RepartitionPages implements api.PlatformMemory.
func (p *Platform) RepartitionPages(r api.MemoryRange, pageSize uintptr) error {
	return p.record(Call{Op: OpRepartition, Range: r, PageSize: pageSize, Node: api.NodeUnassigned})
}

// ReleasePages implements api.PlatformMemory.
func (p *Platform) ReleasePages(r api.MemoryRange, pageSize uintptr) error {
	return p.record(Call{Op: OpRelease, Range: r, PageSize: pageSize, Node: api.NodeUnassigned})
}

// BindFirstTouch implements api.PlatformMemory.
func (p *Platform) BindFirstTouch(r api.MemoryRange, node api.NodeID) error {
	return p.record(Call{Op: OpBind, Range: r, Node: node})
}

// PageSize implements api.PlatformMemory.
func (p *Platform) PageSize(api.MemoryRange) uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageSize
}

// Reserve implements api.Reserver with Go heap memory.
func (p *Platform) Reserve(size uintptr) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserved++
	return make([]byte, size), nil
}

// Unreserve implements api.Reserver.
func (p *Platform) Unreserve([]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserved--
	return nil
}

// Reserved returns the number of live reservations.
func (p *Platform) Reserved() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserved
}

// Calls returns a copy of the recorded calls.
func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallsFor returns recorded calls of a single op.
func (p *Platform) CallsFor(op Op) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops the recorded calls.
func (p *Platform) Reset() {
	p.mu.Lock()
	p.calls = nil
	p.mu.Unlock()
}

var _ api.Platform = (*Platform)(nil)
