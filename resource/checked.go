package resource

import (
	"sync"
	"unsafe"

	"github.com/wippyai/memkit"
	"github.com/wippyai/memkit/errors"
)

// Stats is a snapshot of a Checked resource's accounting.
type Stats struct {
	Allocs    uint64
	Frees     uint64
	Live      uint64
	LiveBytes uintptr
	PeakBytes uintptr
}

// Checked wraps a resource with allocation accounting. It tracks every
// reservation that is still live, panics on double frees, foreign
// pointers and size mismatches, and reports reservations never returned.
//
// The panic value is the matching *errors.Error, so a recovering caller
// can inspect the violation. Checked is a debugging aid: it remembers
// every released address, so its footprint grows with traffic. Keep it
// out of steady-state production paths.
type Checked struct {
	inner memkit.Resource
	name  string

	mu   sync.Mutex
	live map[unsafe.Pointer]uintptr
	// freed keys are bare addresses, not pointers, so released heap
	// memory stays collectable while the history is kept.
	freed map[uintptr]struct{}
	stats Stats
}

// NewChecked wraps inner with accounting.
func NewChecked(inner memkit.Resource) *Checked {
	return &Checked{
		inner: inner,
		name:  "checked(" + nameOf(inner) + ")",
		live:  make(map[unsafe.Pointer]uintptr),
		freed: make(map[uintptr]struct{}),
	}
}

func (c *Checked) Name() string { return c.name }

// Unwrap exposes the wrapped resource so capability queries see through
// the accounting layer.
func (c *Checked) Unwrap() memkit.Resource { return c.inner }

// Allocate forwards to the wrapped resource and records the reservation.
func (c *Checked) Allocate(n uintptr) (unsafe.Pointer, error) {
	p, err := c.inner.Allocate(n)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.live[p] = n
	delete(c.freed, uintptr(p)) // the address is back in circulation
	c.stats.Allocs++
	c.stats.Live++
	c.stats.LiveBytes += n
	if c.stats.LiveBytes > c.stats.PeakBytes {
		c.stats.PeakBytes = c.stats.LiveBytes
	}
	c.mu.Unlock()

	return p, nil
}

// Deallocate validates the release before forwarding it. A double free,
// a foreign pointer or a size mismatch is a caller bug: Deallocate panics
// with the matching *errors.Error and the wrapped resource never sees the
// bad call.
func (c *Checked) Deallocate(p unsafe.Pointer, n uintptr) {
	c.mu.Lock()
	size, ok := c.live[p]
	if !ok {
		_, wasFreed := c.freed[uintptr(p)]
		c.mu.Unlock()
		if wasFreed {
			panic(errors.DoubleFree(c.name, uintptr(p)))
		}
		panic(errors.ForeignPointer(c.name, uintptr(p)))
	}
	if n != size {
		c.mu.Unlock()
		panic(errors.SizeMismatch(c.name, uintptr(p), n, size))
	}

	delete(c.live, p)
	c.freed[uintptr(p)] = struct{}{}
	c.stats.Frees++
	c.stats.Live--
	c.stats.LiveBytes -= size
	c.mu.Unlock()

	c.inner.Deallocate(p, n)
}

// Stats returns a snapshot of the accounting counters.
func (c *Checked) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Verify returns nil when every reservation has been released, and a
// *errors.LeaksError listing the live reservations otherwise.
func (c *Checked) Verify() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.live) == 0 {
		return nil
	}

	leaks := make([]errors.Leak, 0, len(c.live))
	for p, n := range c.live {
		leaks = append(leaks, errors.Leak{Addr: uintptr(p), Size: n})
	}
	return errors.NewLeaksError(c.name, leaks)
}
