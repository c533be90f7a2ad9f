// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for numaheap.
//
// Provides concurrent-safe state handling primitives including:
//   - YAML configuration with validation and a live snapshot store
//   - Runtime observers for hot-reload
//   - Prometheus counters for region biasing and release
//   - Debug probes exposing platform topology
package control
