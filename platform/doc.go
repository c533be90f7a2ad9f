// File: platform/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package platform implements api.Platform and api.Topology for the host OS.
//
// On Linux, page-size repartitioning maps to madvise(MADV_HUGEPAGE /
// MADV_NOHUGEPAGE), releasing to madvise(MADV_DONTNEED), and first-touch
// binding to mbind(MPOL_PREFERRED). Other systems get a degraded
// implementation whose memory requests report api.ErrNotSupported.
package platform
