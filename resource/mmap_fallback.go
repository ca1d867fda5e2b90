//go:build !unix

package resource

import (
	"os"
	"sync"
	"unsafe"

	"github.com/wippyai/memkit/errors"
	"github.com/wippyai/memkit/internal/align"
)

// Mmap falls back to page-rounded Go heap reservations on platforms
// without anonymous mappings. The page-size rounding and alignment
// contract match the unix implementation; reclamation is left to the
// garbage collector.
type Mmap struct {
	pageSize uintptr

	mu     sync.Mutex
	maps   map[unsafe.Pointer][]byte
	closed bool
}

// NewMmap creates a page-mapping resource.
func NewMmap() *Mmap {
	return &Mmap{
		pageSize: uintptr(os.Getpagesize()),
		maps:     make(map[unsafe.Pointer][]byte),
	}
}

func (m *Mmap) Name() string { return "mmap" }

// AccessibleFromHost marks mapped pages as host addressable.
func (m *Mmap) AccessibleFromHost() {}

// Allocate reserves enough pages to cover n bytes.
func (m *Mmap) Allocate(n uintptr) (unsafe.Pointer, error) {
	length := align.To(n, m.pageSize)
	if length == 0 {
		length = m.pageSize
	}

	b := make([]byte, length+m.pageSize)
	p, _ := align.Forward(unsafe.Pointer(unsafe.SliceData(b)), length+m.pageSize, m.pageSize, length)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errors.Closed(errors.PhaseAllocate, m.Name())
	}
	m.maps[p] = b
	m.mu.Unlock()

	return p, nil
}

// Deallocate drops the reservation so the garbage collector can take it.
// Releasing an unknown address panics, matching the unix implementation.
func (m *Mmap) Deallocate(p unsafe.Pointer, n uintptr) {
	m.mu.Lock()
	_, ok := m.maps[p]
	if ok {
		delete(m.maps, p)
	}
	m.mu.Unlock()

	if !ok {
		panic(errors.ForeignPointer(m.Name(), uintptr(p)))
	}
}

// Close drops every outstanding reservation and refuses further
// allocations.
func (m *Mmap) Close() error {
	m.mu.Lock()
	m.maps = make(map[unsafe.Pointer][]byte)
	m.closed = true
	m.mu.Unlock()
	return nil
}
