// Package memkit provides typed, uninitialized, alignment-correct memory
// buffers allocated from pluggable memory resources.
//
// A memory resource is anything that can reserve and release raw byte
// ranges. Buffers borrow a resource, compute how many bytes a typed view
// needs, and recover a correctly aligned pointer from whatever alignment
// the resource happens to hand out. The memory is uninitialized storage:
// the buffer reserves bytes, and the caller decides what lives in them.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	memkit/              Root package with the Resource contract and capability markers
//	├── buffer/          Typed uninitialized buffers over a resource
//	├── resource/        Concrete resources: heap, arena, pool, mmap, plus
//	│                    checked/trace/metrics wrappers for diagnostics
//	├── guestmem/        WASM linear-memory resource backed by wazero
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Reserve space for 1024 int64 values on the Go heap:
//
//	buf, err := buffer.New[int64](resource.Default, 1024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer buf.Free()
//
//	s := buf.Slice()
//	for i := range s {
//	    s[i] = int64(i)
//	}
//
// # Capabilities
//
// Resources advertise where their memory is addressable from through
// stateless marker interfaces. The markers ride on the resource type, so
// a buffer parameterized by a refined resource interface carries the
// capability set in its own type at zero runtime cost:
//
//	// compiles only for resources declared host accessible
//	func fill[T any, R memkit.HostResource](b *buffer.Buffer[T, R], v T) {
//	    s := b.Slice()
//	    for i := range s {
//	        s[i] = v
//	    }
//	}
//
// Dynamic code can query capabilities without touching instance data:
//
//	if memkit.Has[memkit.GuestAccessible](buf.Resource()) { ... }
//
// # Ownership
//
// A buffer owns exactly one allocation at a time and releases it exactly
// once. Ownership moves between buffers with Move, MoveFrom and Swap;
// copying a buffer value is rejected by go vet. The resource itself is
// never owned: closing, resetting, or releasing a resource while buffers
// still point into it is a caller error.
//
// # Thread Safety
//
// Resources document their own concurrency contracts. A buffer instance
// has a single logical owner and is not safe for concurrent use.
package memkit
