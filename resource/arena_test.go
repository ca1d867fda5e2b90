package resource

import (
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/wippyai/memkit/buffer"
	"github.com/wippyai/memkit/internal/align"
)

func TestArenaBump(t *testing.T) {
	a := NewArena(256)

	p1, err := a.Allocate(16)
	if err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}
	if !align.IsAligned(p1, maxAlign) {
		t.Errorf("first reservation %p not %d-aligned", p1, maxAlign)
	}

	p2, err := a.Allocate(16)
	if err != nil {
		t.Fatalf("second Allocate failed: %v", err)
	}
	if uintptr(p2) != uintptr(p1)+16 {
		t.Errorf("second reservation at %p, want 16 bytes past %p", p2, p1)
	}
	if a.Len() != 32 {
		t.Errorf("Len() = %d, want 32", a.Len())
	}
}

func TestArenaPadsOddSizes(t *testing.T) {
	a := NewArena(256)

	if _, err := a.Allocate(3); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}

	p, err := a.Allocate(8)
	if err != nil {
		t.Fatal(err)
	}
	if !align.IsAligned(p, maxAlign) {
		t.Errorf("reservation after odd size at %p, not %d-aligned", p, maxAlign)
	}
	if a.Len() != 16 {
		t.Errorf("Len() = %d, want 16", a.Len())
	}
}

func TestArenaExhausted(t *testing.T) {
	a := NewArena(64)

	if _, err := a.Allocate(64); err != nil {
		t.Fatalf("Allocate at capacity failed: %v", err)
	}
	_, err := a.Allocate(1)
	if err == nil || !strings.Contains(err.Error(), "exhausted") {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if !strings.Contains(err.Error(), "0 bytes available") {
		t.Errorf("error should report remaining capacity, got %q", err)
	}
}

func TestArenaFailedAllocateKeepsCursor(t *testing.T) {
	a := NewArena(64)

	if _, err := a.Allocate(65); err == nil {
		t.Fatal("expected error for request over capacity")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d after failed Allocate, want 0", a.Len())
	}
	if _, err := a.Allocate(64); err != nil {
		t.Fatalf("Allocate after failed request: %v", err)
	}
}

func TestArenaReset(t *testing.T) {
	a := NewArena(128)

	p1, err := a.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}
	a.Reset()
	if a.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", a.Len())
	}

	// The block is recycled in place.
	p2, err := a.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Errorf("first reservation after Reset at %p, want %p", p2, p1)
	}
}

func TestArenaPeakSurvivesReset(t *testing.T) {
	a := NewArena(256)

	if _, err := a.Allocate(200); err != nil {
		t.Fatal(err)
	}
	a.Reset()
	if _, err := a.Allocate(8); err != nil {
		t.Fatal(err)
	}

	if a.Peak() != 200 {
		t.Errorf("Peak() = %d, want 200", a.Peak())
	}
	if a.Len() != 8 {
		t.Errorf("Len() = %d, want 8", a.Len())
	}
	if a.Cap() != 256 {
		t.Errorf("Cap() = %d, want 256", a.Cap())
	}
}

func TestArenaRelease(t *testing.T) {
	a := NewArena(64)
	if _, err := a.Allocate(8); err != nil {
		t.Fatal(err)
	}
	a.Release()

	if a.Cap() != 0 {
		t.Errorf("Cap() = %d after Release, want 0", a.Cap())
	}
	_, err := a.Allocate(8)
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected closed error after Release, got %v", err)
	}
}

func TestArenaZeroSize(t *testing.T) {
	a := NewArena(64)

	p, err := a.Allocate(0)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Error("zero-size reservation should be addressable")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d after zero-size Allocate, want 0", a.Len())
	}
}

func TestArenaConcurrent(t *testing.T) {
	const (
		goroutines = 8
		rounds     = 32
		chunk      = 16
	)
	a := NewArena(goroutines * rounds * chunk)

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				p, err := a.Allocate(chunk)
				if err != nil {
					errs <- err
					return
				}
				// Touch the reservation so overlap shows up under -race.
				s := unsafe.Slice((*byte)(p), chunk)
				for k := range s {
					s[k] = byte(j)
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Allocate failed: %v", err)
	}

	if a.Len() != goroutines*rounds*chunk {
		t.Errorf("Len() = %d, want %d", a.Len(), goroutines*rounds*chunk)
	}
}

func TestArenaWithBuffer(t *testing.T) {
	a := NewArena(4096)

	b, err := buffer.New[int64](a, 16)
	if err != nil {
		t.Fatal(err)
	}
	s := b.Slice()
	for i := range s {
		s[i] = int64(i * i)
	}
	if s[15] != 225 {
		t.Errorf("element 15 = %d, want 225", s[15])
	}

	b.Free()
	if a.Len() != 16*8 {
		t.Errorf("Len() = %d after buffer Free, want %d", a.Len(), 16*8)
	}
	a.Reset()
	if a.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", a.Len())
	}
}
