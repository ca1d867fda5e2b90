// Package resource provides concrete memory resources and diagnostic
// wrappers for memkit buffers.
//
// Every type here implements memkit.Resource. The concrete resources own
// memory; the wrappers borrow another resource and add behavior without
// changing where the bytes come from.
//
// # Concrete Resources
//
//	Heap   - Go heap allocations, reclaimed by the garbage collector
//	Arena  - one contiguous block, bump allocation, released all at once
//	Pool   - power-of-two size classes recycled over a parent resource
//	Mmap   - anonymous page mappings outside the Go heap
//
// Heap requires no setup and is available as the package variable Default:
//
//	buf, err := buffer.New[float64](resource.Default, 4096)
//
// # Wrappers
//
//	Checked - tracks live allocations; detects leaks, double frees,
//	          foreign pointers and size mismatches
//	Trace   - logs every allocate and deallocate through a zap logger
//	Metrics - exports allocation counters and live-byte gauges to Prometheus
//
// Wrappers expose the wrapped resource through Unwrap, so capability
// queries with memkit.Has see through them:
//
//	chk := resource.NewChecked(resource.Default)
//	memkit.Has[memkit.HostAccessible](chk) // true, via the heap underneath
//
// # Lifecycle
//
// Arena and Mmap own memory that outlives individual allocations; both
// must not be reset, released or closed while any buffer still points into
// them. Buffers only ever borrow a resource.
//
// # Concurrency
//
// All resources in this package are safe for concurrent Allocate and
// Deallocate calls. Lifecycle methods (Reset, Release, Close) require the
// same external exclusion as the buffers they would invalidate.
package resource
