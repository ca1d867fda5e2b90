// Package wasmbin emits small WebAssembly binaries by hand.
//
// It covers exactly what guestmem needs: LEB128 encoding, a section
// builder, and the builtin allocator module. It is not a general-purpose
// assembler.
//
// # Binary Layout
//
// A module is the 8-byte magic/version header followed by sections, each
// an id byte and a size-prefixed payload, in ascending id order. The
// builtin allocator carries type, function, memory, global, export and
// code sections; everything else is omitted.
//
// # The Builtin Allocator
//
// Allocator produces a module with no imports. Its linear memory is fixed
// (min == max) so instantiating runtimes never move the backing buffer,
// which is what lets hosts hold raw views into it. The exported alloc is
// a bump allocator: a mutable i32 global tracks the cursor, requests are
// 8-byte aligned, and 0 signals exhaustion. The exported free does
// nothing; the module is meant for scratch memory whose lifetime is the
// instance's.
package wasmbin
