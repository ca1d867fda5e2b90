package resource

import (
	"unsafe"

	"github.com/wippyai/memkit/internal/align"
)

// Heap allocates from the Go heap. Reservations are padded so the returned
// address sits on an 8-byte boundary regardless of how the runtime places
// the backing array. Deallocate is a no-op: the garbage collector reclaims
// a reservation once no buffer holds its pointer.
//
// Heap is stateless and safe for concurrent use.
type Heap struct{}

// Default is the resource used when nothing more specific is called for.
var Default = &Heap{}

func (*Heap) Name() string { return "heap" }

// AccessibleFromHost marks heap memory as host addressable.
func (*Heap) AccessibleFromHost() {}

// Allocate reserves n bytes. The zero-size reservation is a real, unique
// allocation so distinct callers never share an address.
func (*Heap) Allocate(n uintptr) (unsafe.Pointer, error) {
	raw := unsafe.Pointer(unsafe.SliceData(make([]byte, n+maxAlign)))
	p, ok := align.Forward(raw, n+maxAlign, maxAlign, n)
	if !ok {
		// unreachable: maxAlign bytes of padding always cover the shift
		return raw, nil
	}
	return p, nil
}

// Deallocate lets the garbage collector take over. The reservation stays
// valid until the last pointer into it is gone.
func (*Heap) Deallocate(unsafe.Pointer, uintptr) {}
