// Package guestmem bridges buffers into WebAssembly guest memory.
//
// A Linear resource satisfies memkit.SharedResource: reservations come
// from the guest's own allocator inside its linear memory, and the host
// pointers returned by Allocate alias that memory, so both sides see the
// same bytes without copies.
//
// # Quick Start
//
//	ctx := context.Background()
//	guest, err := guestmem.New(ctx)
//	if err != nil {
//		return err
//	}
//	defer guest.Close(ctx)
//
//	buf, err := buffer.NewShared[uint32](guest, 1024)
//	if err != nil {
//		return err
//	}
//	defer buf.Free()
//
//	off, _ := guest.Offset(unsafe.Pointer(buf.Data()))
//	// pass off to guest code; writes through buf.Slice() are visible there
//
// New runs a builtin allocator module on a private wazero runtime, which
// is enough for scratch interchange buffers. Attach wires the same
// resource over a real guest instance's exports instead, so buffers land
// in the memory of the module that will consume them.
//
// # Pointer Stability
//
// Host pointers are views into the instance's memory buffer. Growing the
// memory moves the buffer and invalidates every live pointer, which is
// why the builtin module fixes its memory size. When attaching, either
// attach a fixed-size memory or keep the guest from growing it while
// reservations are live.
package guestmem
