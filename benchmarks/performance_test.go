// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for numaheap components.

package benchmarks

import (
	"testing"

	"github.com/momentics/numaheap/api"
	"github.com/momentics/numaheap/control"
	"github.com/momentics/numaheap/core/align"
	"github.com/momentics/numaheap/core/locality"
	"github.com/momentics/numaheap/core/numa"
	"github.com/momentics/numaheap/facade"
	"github.com/momentics/numaheap/fake"
	"github.com/momentics/numaheap/heap"
)

type owner api.MemoryRange

func (o owner) Range() api.MemoryRange { return api.MemoryRange(o) }

func (o owner) Contains(sub api.MemoryRange) bool { return api.MemoryRange(o).Contains(sub) }

// BenchmarkAlignRange measures the alignment hot path.
func BenchmarkAlignRange(b *testing.B) {
	r := api.MemoryRange{Start: 12345, End: 12345 + uintptr(7*api.MiB)}
	var sink api.MemoryRange
	for i := 0; i < b.N; i++ {
		sink = align.Range(r, api.DefaultGrain)
	}
	_ = sink
}

// BenchmarkBiasRelease measures one bias/release cycle against the recording platform.
func BenchmarkBiasRelease(b *testing.B) {
	p := fake.NewPlatform(4096)
	mgr := numa.NewManager(api.DefaultGrain, p, fake.NewTopology(true, 0), nil, nil)
	sp := mgr.NewSpace()
	o := owner(api.NewMemoryRange(0, uintptr(4*api.MiB)))
	ctx := locality.NewBinding()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sp.Initialize(o, ctx)
		sp.Teardown(o)
		if i%1024 == 0 {
			p.Reset()
		}
	}
}

// BenchmarkHeapAllocateReclaim measures the free-queue round trip under contention.
func BenchmarkHeapAllocateReclaim(b *testing.B) {
	h, err := heap.New(heap.Config{Grain: 64 * api.KiB, Size: uintptr(256 * 64 * api.KiB), NUMA: true},
		fake.NewPlatform(4096), fake.NewTopology(true, 0))
	if err != nil {
		b.Fatal(err)
	}
	defer h.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := locality.NewBinding()
		for pb.Next() {
			r, err := h.Allocate(ctx)
			if err != nil {
				continue
			}
			_ = h.Reclaim(r)
		}
	})
}

// BenchmarkFacadeIntegration measures allocation through the facade.
func BenchmarkFacadeIntegration(b *testing.B) {
	cfg := control.DefaultConfig()
	cfg.Grain = control.ByteSize(64 * api.KiB)
	cfg.Regions = 64
	cfg.Log.Enabled = false
	cfg.Metrics.Namespace = "bench"
	nh, err := facade.New(cfg, facade.WithPlatform(fake.NewPlatform(4096)),
		facade.WithTopology(fake.NewTopology(true, 0)))
	if err != nil {
		b.Fatal(err)
	}
	defer nh.Shutdown()

	ctx := locality.NewBinding()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := nh.Allocate(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if err := nh.Reclaim(r); err != nil {
			b.Fatal(err)
		}
	}
}
