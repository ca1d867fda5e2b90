package resource

import (
	"sync"
	"unsafe"

	"github.com/wippyai/memkit/errors"
	"github.com/wippyai/memkit/internal/align"
)

// Arena is a bump allocator over one contiguous block. Allocate advances a
// cursor through the block; Deallocate is a no-op. The whole block is
// reclaimed at once with Reset and returned to the garbage collector with
// Release.
//
// Every reservation starts on an 8-byte boundary. An arena is safe for
// concurrent Allocate calls; Reset and Release invalidate every pointer
// handed out so far and require the same external exclusion as freeing
// the buffers would.
type Arena struct {
	mu    sync.Mutex
	block []byte
	base  unsafe.Pointer
	size  uintptr
	off   uintptr
	peak  uintptr
}

// NewArena creates an arena with room for size bytes.
func NewArena(size uintptr) *Arena {
	block := make([]byte, size+maxAlign)
	base, _ := align.Forward(unsafe.Pointer(unsafe.SliceData(block)), size+maxAlign, maxAlign, size)
	return &Arena{
		block: block,
		base:  base,
		size:  size,
	}
}

func (a *Arena) Name() string { return "arena" }

// AccessibleFromHost marks arena memory as host addressable.
func (a *Arena) AccessibleFromHost() {}

// Allocate reserves n bytes by advancing the cursor, rounded up to the
// next 8-byte boundary first. Fails with an exhausted error once the
// block cannot fit the request.
func (a *Arena) Allocate(n uintptr) (unsafe.Pointer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.block == nil {
		return nil, errors.Closed(errors.PhaseAllocate, a.Name())
	}

	off := align.To(a.off, maxAlign)
	if off > a.size || n > a.size-off {
		avail := uintptr(0)
		if off < a.size {
			avail = a.size - off
		}
		return nil, errors.Exhausted(a.Name(), n, avail)
	}

	p := unsafe.Add(a.base, off)
	a.off = off + n
	if a.off > a.peak {
		a.peak = a.off
	}
	return p, nil
}

// Deallocate is a no-op: arena reservations come back only through Reset.
func (a *Arena) Deallocate(unsafe.Pointer, uintptr) {}

// Reset moves the cursor back to the start of the block. Every pointer
// previously returned by Allocate becomes invalid immediately. Peak is
// preserved across resets for high-water tracking.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.off = 0
}

// Release returns the block to the garbage collector. The arena is closed
// afterwards: Allocate fails and Reset has nothing to do.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.block = nil
	a.base = nil
	a.off = 0
	a.size = 0
}

// Len returns the bytes currently allocated, padding included.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.off)
}

// Cap returns the total capacity of the block, zero after Release.
func (a *Arena) Cap() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.size)
}

// Peak returns the high-water mark of Len across the arena's lifetime.
// Reset does not clear it.
func (a *Arena) Peak() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.peak)
}
