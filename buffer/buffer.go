package buffer

import (
	"fmt"
	"unsafe"

	"github.com/wippyai/memkit"
	"github.com/wippyai/memkit/internal/align"
)

// noCopy makes go vet's copylocks check flag value copies of Buffer.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Buffer owns uninitialized storage for a run of T values reserved from a
// borrowed resource R. The zero value is an Empty buffer with no resource.
//
// Instantiating R with a refined interface such as memkit.HostResource
// carries the capability set in the buffer's type; see the package
// documentation and the root memkit package.
type Buffer[T any, R memkit.Resource] struct {
	noCopy noCopy

	res   R
	count int
	raw   unsafe.Pointer
}

// allocSize returns the byte size reserved for count values of T: the
// element bytes rounded up to the alignment of T. The rounding is what
// guarantees an aligned sub-range exists inside the reservation for any
// resource whose default alignment covers T.
func allocSize[T any](count int) uintptr {
	var v T
	return align.To(uintptr(count)*unsafe.Sizeof(v), unsafe.Alignof(v))
}

// New reserves storage for count values of T from res. A zero count
// produces an Empty buffer and does not call the resource. A negative
// count panics. On allocation failure no buffer comes into existence.
//
// The storage is uninitialized. The resource is borrowed and must stay
// valid for the buffer's lifetime.
func New[T any, R memkit.Resource](res R, count int) (*Buffer[T, R], error) {
	if count < 0 {
		panic(fmt.Sprintf("buffer.New: negative count %d", count))
	}
	b := &Buffer[T, R]{res: res}
	if count == 0 {
		return b, nil
	}
	p, err := res.Allocate(allocSize[T](count))
	if err != nil {
		return nil, err
	}
	b.count = count
	b.raw = p
	return b, nil
}

// data re-derives the aligned start of the typed view from the raw
// reservation. It runs on every access instead of being cached at
// construction, trading a few integer operations per call for a smaller
// buffer and no stale-pointer field to maintain across moves.
func (b *Buffer[T, R]) data() unsafe.Pointer {
	if b.raw == nil {
		return nil
	}
	var v T
	need := uintptr(b.count) * unsafe.Sizeof(v)
	p, ok := align.Forward(b.raw, allocSize[T](b.count), unsafe.Alignof(v), need)
	if !ok {
		panic(fmt.Sprintf(
			"buffer: resource returned %d bytes at %p with no %d-aligned room for %d bytes",
			allocSize[T](b.count), b.raw, unsafe.Alignof(v), need))
	}
	return p
}

// Data returns a pointer to the first element slot, aligned for T. It is
// nil when the buffer is Empty and must not be dereferenced then.
//
// The conversion from the raw reservation is the type-aliasing boundary:
// the bytes were never created as T values, and the caller is responsible
// for writing elements before reading them.
func (b *Buffer[T, R]) Data() *T {
	return (*T)(b.data())
}

// End returns the address one past the last element slot, nil when Empty.
// It is a boundary marker and must not be dereferenced.
func (b *Buffer[T, R]) End() *T {
	p := b.data()
	if p == nil {
		return nil
	}
	var v T
	return (*T)(unsafe.Add(p, uintptr(b.count)*unsafe.Sizeof(v)))
}

// Slice returns the storage as a []T of length Len. The elements are
// uninitialized until written. Returns nil when Empty.
//
// The slice aliases the buffer's allocation: it is invalidated by Free,
// MoveFrom into this buffer, or anything that releases the allocation.
func (b *Buffer[T, R]) Slice() []T {
	return unsafe.Slice(b.Data(), b.count)
}

// Len returns the element count. It reads a field and never runs the
// aligned resolver.
func (b *Buffer[T, R]) Len() int {
	return b.count
}

// Resource returns the borrowed resource handle. The handle is copied,
// the resource behind it is not.
func (b *Buffer[T, R]) Resource() R {
	return b.res
}

// Free releases the allocation back to the resource and leaves the buffer
// Empty. Freeing an Empty buffer is a no-op, so Free is idempotent. The
// resource handle is kept, and the buffer can be reused as a MoveFrom or
// Swap destination.
func (b *Buffer[T, R]) Free() {
	if b.raw == nil {
		return
	}
	b.res.Deallocate(b.raw, allocSize[T](b.count))
	b.raw = nil
	b.count = 0
}

// Move transfers ownership of the allocation to a freshly constructed
// buffer and leaves the receiver Empty. The receiver keeps its resource
// handle. No resource calls occur.
func (b *Buffer[T, R]) Move() *Buffer[T, R] {
	nb := &Buffer[T, R]{res: b.res, count: b.count, raw: b.raw}
	b.count = 0
	b.raw = nil
	return nb
}

// MoveFrom releases the receiver's own allocation, then adopts src's
// resource handle and allocation, leaving src Empty. Moving a buffer into
// itself is a no-op.
func (b *Buffer[T, R]) MoveFrom(src *Buffer[T, R]) {
	if b == src {
		return
	}
	b.Free()
	b.res = src.res
	b.count = src.count
	b.raw = src.raw
	src.count = 0
	src.raw = nil
}

// Swap exchanges the resource handles, counts and allocations of the two
// buffers. No resource calls occur and neither buffer is observable in an
// intermediate state by its single owner.
func (b *Buffer[T, R]) Swap(other *Buffer[T, R]) {
	b.res, other.res = other.res, b.res
	b.count, other.count = other.count, b.count
	b.raw, other.raw = other.raw, b.raw
}

// Host, Guest and Shared are buffers over the refined resource interfaces,
// for signatures that want the capability in the type without a second
// type parameter.
type (
	Host[T any]   = Buffer[T, memkit.HostResource]
	Guest[T any]  = Buffer[T, memkit.GuestResource]
	Shared[T any] = Buffer[T, memkit.SharedResource]
)

// NewHost reserves storage from a host-accessible resource.
func NewHost[T any](res memkit.HostResource, count int) (*Host[T], error) {
	return New[T](res, count)
}

// NewGuest reserves storage from a guest-accessible resource.
func NewGuest[T any](res memkit.GuestResource, count int) (*Guest[T], error) {
	return New[T](res, count)
}

// NewShared reserves storage from a resource accessible on both sides.
func NewShared[T any](res memkit.SharedResource, count int) (*Shared[T], error) {
	return New[T](res, count)
}
