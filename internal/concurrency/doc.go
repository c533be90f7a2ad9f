// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NUMA topology discovery and CPU/NUMA pinning for the calling OS thread.
// Topology is read from sysfs; the current node comes from getcpu(2).
// Non-Linux builds report a single node and never pin.
package concurrency
