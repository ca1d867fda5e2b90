// Package buffer provides typed, uninitialized storage allocated from a
// memory resource.
//
// A Buffer[T, R] reserves space for a run of T values without constructing
// them: the bytes behind the buffer are whatever the resource handed out.
// Callers write values before reading them.
//
// # Lifecycle
//
// A buffer is either Empty (no allocation, zero length) or Holding (exactly
// one allocation). New with a zero count produces an Empty buffer without
// touching the resource. Free releases the allocation and leaves the buffer
// Empty; freeing an Empty buffer is a no-op. Each Holding lifetime issues
// exactly one Allocate and at most one matching Deallocate.
//
// Ownership transfers by move, never by copy:
//
//	b := a.Move()      // b owns the allocation, a is Empty
//	dst.MoveFrom(src)  // dst frees its own allocation, then adopts src's
//	x.Swap(y)          // exchanges allocations, no resource calls
//
// Copying a Buffer value would give two owners to one allocation, so the
// type carries a noCopy guard that go vet reports.
//
// # Alignment
//
// The resource only promises its own default alignment. The buffer reserves
// the element bytes rounded up to the alignment of T and re-derives the
// aligned start address on every Data, End and Slice call. A resource whose
// default alignment is coarser than T costs nothing; one that cannot cover
// T's alignment within the reserved bytes is misbehaving and the accessors
// panic.
//
// # The resource is borrowed
//
// The buffer holds a reference to its resource, it does not own it. Closing,
// resetting or releasing the resource while the buffer still holds an
// allocation invalidates the buffer's memory with no runtime check. Keep
// the resource open for as long as any of its buffers live.
package buffer
