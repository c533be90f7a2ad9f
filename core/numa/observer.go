// File: core/numa/observer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package numa

import "github.com/momentics/numaheap/api"

// Op names the platform primitive that degraded.
type Op string

const (
	OpRepartition Op = "repartition"
	OpRelease     Op = "release"
	OpBind        Op = "bind"
)

// Observer receives engine events. control.Metrics implements it.
type Observer interface {
	RegionBiased(node api.NodeID, aligned api.MemoryRange)
	BiasSkipped()
	RegionReleased(aligned api.MemoryRange)
	ReleaseSkipped()
	PlatformDegraded(op Op)
}

type nopObserver struct{}

func (nopObserver) RegionBiased(api.NodeID, api.MemoryRange) {}
func (nopObserver) BiasSkipped()                             {}
func (nopObserver) RegionReleased(api.MemoryRange)           {}
func (nopObserver) ReleaseSkipped()                          {}
func (nopObserver) PlatformDegraded(Op)                      {}
