// File: internal/concurrency/affinity_other.go
//go:build !linux

//
// Fallback for platforms without NUMA information: one node, no pinning.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"runtime"

	"github.com/pkg/errors"
)

func platformTopology() (*Topology, error) {
	return SingleNode(runtime.NumCPU()), nil
}

func platformCurrentNUMANodeID() int { return 0 }

func platformThreadCPUs() ([]int, error) {
	return nil, errors.New("thread affinity not available on " + runtime.GOOS)
}

func platformSetThreadCPUs([]int) error {
	return errors.New("thread affinity not available on " + runtime.GOOS)
}
