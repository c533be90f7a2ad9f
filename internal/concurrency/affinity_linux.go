// File: internal/concurrency/affinity_linux.go
//go:build linux

package concurrency

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func platformTopology() (*Topology, error) {
	return LoadTopology(SysNodePath)
}

// platformCurrentNUMANodeID asks the kernel via getcpu(2).
func platformCurrentNUMANodeID() int {
	var cpu, node uint32
	_, _, errno := unix.RawSyscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return -1
	}
	return int(node)
}

func platformThreadCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, errors.Wrap(err, "sched_getaffinity")
	}
	n := set.Count()
	cpus := make([]int, 0, n)
	for c := 0; len(cpus) < n; c++ {
		if set.IsSet(c) {
			cpus = append(cpus, c)
		}
	}
	return cpus, nil
}

func platformSetThreadCPUs(cpus []int) error {
	if len(cpus) == 0 {
		return errors.New("empty cpu set")
	}
	var set unix.CPUSet
	for _, c := range cpus {
		set.Set(c)
	}
	return errors.Wrap(unix.SchedSetaffinity(0, &set), "sched_setaffinity")
}
