package resource

import (
	"testing"
	"unsafe"
)

var benchSink unsafe.Pointer

func BenchmarkAllocate_Heap(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := Default.Allocate(4096)
		if err != nil {
			b.Fatal(err)
		}
		benchSink = p
		Default.Deallocate(p, 4096)
	}
}

func BenchmarkAllocate_Arena(b *testing.B) {
	a := NewArena(1 << 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := a.Allocate(64)
		if err != nil {
			a.Reset()
			continue
		}
		benchSink = p
	}
}

func BenchmarkAllocate_Pool(b *testing.B) {
	pool := NewPool(Default)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := pool.Allocate(4096)
		if err != nil {
			b.Fatal(err)
		}
		benchSink = p
		pool.Deallocate(p, 4096)
	}
}
