// File: core/numa/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package numa biases heap regions towards the NUMA node of the thread that
// first populates them, and decommits them on release.
//
// Biasing a region works on its largest grain-aligned sub-range only:
//
//  1. repartition the range to the grain's native page size,
//  2. uncommit whatever backs it today,
//  3. bind future first-touched pages to the target node.
//
// Fragments shorter than one grain are skipped without touching the
// platform. Platform failures degrade placement to the OS default and are
// reported to the Observer; an aligned range escaping its region panics.
package numa
