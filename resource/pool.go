package resource

import (
	"math/bits"
	"sync"
	"unsafe"

	"github.com/wippyai/memkit"
	"github.com/wippyai/memkit/errors"
)

const (
	// Pool limits to prevent memory bloat
	poolMinShift    = 3  // smallest class is 8 bytes
	poolMaxShift    = 16 // largest class is 64 KiB
	poolClassCount  = poolMaxShift - poolMinShift + 1
	poolMaxPerClass = 64 // free entries kept per class
)

// Pool recycles allocations through power-of-two size classes on top of a
// parent resource. Requests are rounded up to their class, satisfied from
// the class free list when possible, and pulled from the parent otherwise.
// Deallocate returns memory to the free list until the class is full, then
// hands it back to the parent.
//
// Requests above the largest class bypass the pool entirely and do not
// appear in its stats. Pool is safe for concurrent use when the parent is.
type Pool struct {
	parent memkit.Resource

	mu    sync.Mutex
	free  [poolClassCount][]unsafe.Pointer
	stats PoolStats
}

// PoolStats is a snapshot of a pool's recycling effectiveness.
type PoolStats struct {
	Hits    uint64 // allocations served from a free list
	Misses  uint64 // class-sized allocations pulled from the parent
	Evicted uint64 // frees handed to the parent because the class was full
}

// NewPool creates a pool drawing from parent.
func NewPool(parent memkit.Resource) *Pool {
	return &Pool{parent: parent}
}

func (p *Pool) Name() string { return "pool(" + nameOf(p.parent) + ")" }

// Unwrap exposes the parent so capability queries see through the pool.
func (p *Pool) Unwrap() memkit.Resource { return p.parent }

// classFor maps a request size to its class index. Sizes above the largest
// class return ok == false.
func classFor(n uintptr) (int, bool) {
	if n <= 1<<poolMinShift {
		return 0, true
	}
	shift := bits.Len64(uint64(n - 1))
	if shift > poolMaxShift {
		return 0, false
	}
	return shift - poolMinShift, true
}

// classSize returns the byte size of a class.
func classSize(class int) uintptr {
	return 1 << (class + poolMinShift)
}

// Allocate returns a free entry of the request's class, or reserves a
// fresh class-sized block from the parent.
func (p *Pool) Allocate(n uintptr) (unsafe.Pointer, error) {
	class, ok := classFor(n)
	if !ok {
		return p.parent.Allocate(n)
	}

	p.mu.Lock()
	if list := p.free[class]; len(list) > 0 {
		q := list[len(list)-1]
		list[len(list)-1] = nil
		p.free[class] = list[:len(list)-1]
		p.stats.Hits++
		p.mu.Unlock()
		return q, nil
	}
	p.stats.Misses++
	p.mu.Unlock()

	q, err := p.parent.Allocate(classSize(class))
	if err != nil {
		return nil, errors.AllocationFailed(p.Name(), n, err)
	}
	return q, nil
}

// Deallocate keeps the entry on its class free list, or returns it to the
// parent when the list is full or the size bypassed the pool.
func (p *Pool) Deallocate(q unsafe.Pointer, n uintptr) {
	class, ok := classFor(n)
	if !ok {
		p.parent.Deallocate(q, n)
		return
	}

	p.mu.Lock()
	if len(p.free[class]) < poolMaxPerClass {
		p.free[class] = append(p.free[class], q)
		p.mu.Unlock()
		return
	}
	p.stats.Evicted++
	p.mu.Unlock()

	p.parent.Deallocate(q, classSize(class))
}

// Stats reports how the pool has been performing.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Drain returns every pooled entry to the parent. Outstanding allocations
// are unaffected.
func (p *Pool) Drain() {
	p.mu.Lock()
	var drained [poolClassCount][]unsafe.Pointer
	for class := range p.free {
		drained[class] = p.free[class]
		p.free[class] = nil
	}
	p.mu.Unlock()

	for class, list := range drained {
		for _, q := range list {
			p.parent.Deallocate(q, classSize(class))
		}
	}
}

// Idle returns the number of entries currently parked on free lists.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, list := range p.free {
		total += len(list)
	}
	return total
}
