//go:build unix

package resource

import (
	"os"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/memkit"
	"github.com/wippyai/memkit/errors"
	"github.com/wippyai/memkit/internal/align"
)

// Mmap reserves anonymous private pages straight from the operating
// system, outside the Go heap. Reservations are rounded up to whole pages
// and returned page-aligned, so the default alignment is the system page
// size. Zero-size reservations cost one page.
//
// The garbage collector never sees these pages: every reservation must be
// returned with Deallocate or reclaimed in bulk with Close.
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

// Allocate maps enough pages to cover n bytes.
func (m *Mmap) Allocate(n uintptr) (unsafe.Pointer, error) {
	length := align.To(n, m.pageSize)
	if length == 0 {
		length = m.pageSize
	}

	b, err := unix.Mmap(-1, 0, int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.MapFailed(n, err)
	}
	p := unsafe.Pointer(unsafe.SliceData(b))

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = unix.Munmap(b)
		return nil, errors.Closed(errors.PhaseAllocate, m.Name())
	}
	m.maps[p] = b
	m.mu.Unlock()

	return p, nil
}

// Deallocate unmaps the reservation's pages. Releasing an address this
// resource never handed out, or one already released, is a caller bug
// and panics.
func (m *Mmap) Deallocate(p unsafe.Pointer, n uintptr) {
	m.mu.Lock()
	b, ok := m.maps[p]
	if ok {
		delete(m.maps, p)
	}
	m.mu.Unlock()

	if !ok {
		panic(errors.ForeignPointer(m.Name(), uintptr(p)))
	}
	m.unmap(b)
}

// Close unmaps every outstanding reservation and refuses further
// allocations. Buffers still holding into the resource are invalidated.
func (m *Mmap) Close() error {
	m.mu.Lock()
	maps := m.maps
	m.maps = make(map[unsafe.Pointer][]byte)
	m.closed = true
	m.mu.Unlock()

	for _, b := range maps {
		m.unmap(b)
	}
	return nil
}

func (m *Mmap) unmap(b []byte) {
	err := unix.Munmap(b)
	if err == nil || err == unix.EINVAL {
		// EINVAL here means the range is already gone; nothing to reclaim
		return
	}
	memkit.Logger().Warn("munmap failed",
		zap.String("resource", m.Name()),
		zap.Int("length", len(b)),
		zap.Error(err))
}
