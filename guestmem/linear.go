package guestmem

import (
	"context"
	"math"
	"sync"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/memkit"
	"github.com/wippyai/memkit/errors"
	"github.com/wippyai/memkit/guestmem/internal/wasmbin"
)

// BuiltinPages is the linear memory size, in 64 KiB pages, of the module
// New instantiates.
const BuiltinPages = 4

type span struct {
	off  uint32
	size uint32
}

// Linear is a memkit.SharedResource backed by a WebAssembly instance's
// linear memory. Reservations are made by the guest's own allocator
// export, and the returned host pointers alias the instance's memory
// buffer, so host and guest read the same bytes.
//
// The wazero instance is not safe for concurrent calls, so Linear
// serializes Allocate and Deallocate internally.
type Linear struct {
	ctx   context.Context
	mem   api.Memory
	alloc api.Function
	free  api.Function

	runtime wazero.Runtime // owned when built by New, nil when attached

	mu      sync.Mutex
	stack   [2]uint64
	offsets map[unsafe.Pointer]span
	closed  bool
}

// New boots a private wazero runtime running the builtin allocator module
// and returns a Linear resource over its memory. The context drives every
// guest call the resource makes; Close releases the runtime.
func New(ctx context.Context) (*Linear, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	rt := wazero.NewRuntime(ctx)
	compiled, err := rt.CompileModule(ctx, wasmbin.Allocator(BuiltinPages))
	if err != nil {
		rt.Close(ctx)
		return nil, errors.New(errors.PhaseGuest, errors.KindNotInitialized).
			Detail("compile builtin allocator").Cause(err).Build()
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("memkit_guest"))
	if err != nil {
		compiled.Close(ctx)
		rt.Close(ctx)
		return nil, errors.New(errors.PhaseGuest, errors.KindNotInitialized).
			Detail("instantiate builtin allocator").Cause(err).Build()
	}

	l, err := Attach(ctx, mod.Memory(), mod.ExportedFunction("alloc"), mod.ExportedFunction("free"))
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	l.runtime = rt
	return l, nil
}

// Attach builds a Linear resource over the exports of an existing module
// instance: its memory, an allocator with signature (i32 size) -> (i32
// offset) that returns 0 on exhaustion, and a release function with
// signature (i32 offset, i32 size). The instance stays owned by the
// caller; Close only drops the tracking table.
//
// Host pointers returned by Allocate are views into the instance's memory
// buffer. Growing the memory moves the buffer and invalidates them, so
// attach fixed-size memories, or keep the guest from growing while
// reservations are live.
func Attach(ctx context.Context, mem api.Memory, alloc, free api.Function) (*Linear, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if mem == nil || alloc == nil || free == nil {
		return nil, errors.NotInitialized(errors.PhaseGuest, "guest allocator exports")
	}
	return &Linear{
		ctx:     ctx,
		mem:     mem,
		alloc:   alloc,
		free:    free,
		offsets: make(map[unsafe.Pointer]span),
	}, nil
}

// Name identifies the resource in errors, logs and metrics.
func (l *Linear) Name() string { return "guest" }

// AccessibleFromHost marks the capability; pointers alias guest memory.
func (l *Linear) AccessibleFromHost() {}

// AccessibleFromGuest marks the capability; offsets index guest memory.
func (l *Linear) AccessibleFromGuest() {}

// Memory exposes the instance's linear memory.
func (l *Linear) Memory() api.Memory { return l.mem }

// Allocate requests n bytes from the guest allocator and returns a host
// pointer into the instance's linear memory. Exhaustion of the guest
// allocator surfaces as a KindExhausted error.
func (l *Linear) Allocate(n uintptr) (unsafe.Pointer, error) {
	if n > math.MaxUint32 {
		return nil, errors.New(errors.PhaseAllocate, errors.KindInvalidInput).
			Resource(l.Name()).Size(n).
			Detail("request exceeds the 32-bit guest address space").Build()
	}
	size := uint32(n)
	if size == 0 {
		size = 1 // zero-size reservations still get a unique address
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, errors.Closed(errors.PhaseAllocate, l.Name())
	}

	l.stack[0] = uint64(size)
	if err := l.alloc.CallWithStack(l.ctx, l.stack[:1]); err != nil {
		return nil, errors.GuestCall("alloc", err)
	}
	off := uint32(l.stack[0])
	if off == 0 {
		return nil, errors.New(errors.PhaseAllocate, errors.KindExhausted).
			Resource(l.Name()).Size(n).
			Detail("guest allocator returned the failure sentinel").Build()
	}

	view, ok := l.mem.Read(off, size)
	if !ok {
		return nil, errors.OutOfBounds(l.Name(), uintptr(off), n, uintptr(l.mem.Size()))
	}
	p := unsafe.Pointer(unsafe.SliceData(view))
	l.offsets[p] = span{off: off, size: size}
	return p, nil
}

// Deallocate hands the reservation back to the guest allocator. Releasing
// a pointer this resource never handed out is a caller bug and panics. A
// guest call failure is logged at warn; the reservation is forgotten
// either way.
func (l *Linear) Deallocate(p unsafe.Pointer, n uintptr) {
	l.mu.Lock()
	s, ok := l.offsets[p]
	if !ok {
		l.mu.Unlock()
		panic(errors.ForeignPointer(l.Name(), uintptr(p)))
	}
	delete(l.offsets, p)

	l.stack[0] = uint64(s.off)
	l.stack[1] = uint64(s.size)
	err := l.free.CallWithStack(l.ctx, l.stack[:2])
	l.mu.Unlock()

	if err != nil {
		memkit.Logger().Warn("guest free failed",
			zap.String("resource", l.Name()),
			zap.Uint32("offset", s.off),
			zap.Error(err))
	}
}

// Offset translates a host pointer returned by Allocate into the guest's
// linear memory offset, for handing to guest code.
func (l *Linear) Offset(p unsafe.Pointer) (uint32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.offsets[p]
	return s.off, ok
}

// Live reports the number of reservations not yet deallocated.
func (l *Linear) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.offsets)
}

// Close tears down the owned runtime when the resource was built by New;
// attached resources only drop their tracking table. Outstanding
// reservations become invalid either way. Close is idempotent.
func (l *Linear) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.offsets = make(map[unsafe.Pointer]span)
	rt := l.runtime
	l.runtime = nil
	l.mu.Unlock()

	if rt != nil {
		return rt.Close(ctx)
	}
	return nil
}
