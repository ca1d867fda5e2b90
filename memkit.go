package memkit

import "unsafe"

// Resource is a memory resource: an allocator that hands out raw byte
// ranges. Buffers hold a Resource by reference and never own it; the
// resource must stay valid for as long as any allocation obtained from
// it is still in use.
//
// Allocate reserves n bytes and returns the start of the reservation.
// The pointer is aligned to the resource's own default alignment, which
// may be coarser or finer than what a caller needs; callers with
// stricter requirements must reserve slack and align forward within the
// reservation. Allocate must return a non-nil pointer when n == 0.
//
// Deallocate releases a reservation previously returned by Allocate on
// the same resource, with the same n. Deallocating a pointer the
// resource did not hand out, or deallocating twice, is a caller bug;
// resources are free to panic on it.
type Resource interface {
	Allocate(n uintptr) (unsafe.Pointer, error)
	Deallocate(p unsafe.Pointer, n uintptr)
}

// HostAccessible marks resources whose allocations the host may address
// directly through unsafe.Pointer. Heap, arena, pool and mmap resources
// are host accessible.
type HostAccessible interface {
	AccessibleFromHost()
}

// GuestAccessible marks resources whose allocations live inside a WASM
// guest's linear memory and are addressable by guest code.
type GuestAccessible interface {
	AccessibleFromGuest()
}

// HostResource is a Resource that is declared host accessible. Using it
// as a buffer's resource type records the capability in the buffer's
// type, so host-only operations can require it at compile time.
type HostResource interface {
	Resource
	HostAccessible
}

// GuestResource is a Resource that is declared guest accessible.
type GuestResource interface {
	Resource
	GuestAccessible
}

// SharedResource is a Resource addressable from both sides, such as a
// guest linear memory whose backing the host can view directly.
type SharedResource interface {
	Resource
	HostAccessible
	GuestAccessible
}

// Unwrapper is implemented by diagnostic resources (Checked, Trace,
// Metrics) that delegate to an inner resource. Has follows the chain,
// so wrapping a resource does not hide its capabilities from dynamic
// queries.
type Unwrapper interface {
	Unwrap() Resource
}

// Has reports whether r, or any resource it wraps, provides the
// capability P. P is a capability interface such as HostAccessible.
// The check reads no instance data; for static enforcement, constrain
// the resource type parameter instead.
func Has[P any](r Resource) bool {
	for r != nil {
		if _, ok := r.(P); ok {
			return true
		}
		u, ok := r.(Unwrapper)
		if !ok {
			return false
		}
		r = u.Unwrap()
	}
	return false
}
