package align

import (
	"testing"
	"unsafe"
)

func TestTo(t *testing.T) {
	tests := []struct {
		name  string
		n     uintptr
		align uintptr
		want  uintptr
	}{
		{"zero size", 0, 8, 0},
		{"zero align", 17, 0, 17},
		{"already aligned", 16, 8, 16},
		{"round up", 17, 8, 24},
		{"one byte", 1, 8, 8},
		{"align one", 17, 1, 17},
		{"large align", 100, 64, 128},
		{"align equals size", 64, 64, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := To(tt.n, tt.align); got != tt.want {
				t.Errorf("To(%d, %d) = %d, want %d", tt.n, tt.align, got, tt.want)
			}
		})
	}
}

func TestIsPow2(t *testing.T) {
	tests := []struct {
		n    uintptr
		want bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{4, true},
		{6, false},
		{64, true},
		{65, false},
		{1 << 20, true},
	}

	for _, tt := range tests {
		if got := IsPow2(tt.n); got != tt.want {
			t.Errorf("IsPow2(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestIsAligned(t *testing.T) {
	var buf [64]byte
	base := unsafe.Pointer(&buf[0])

	// find an address aligned to 8 inside the array
	p, ok := Forward(base, 64, 8, 8)
	if !ok {
		t.Fatal("no aligned address inside 64-byte array")
	}

	if !IsAligned(p, 8) {
		t.Errorf("Forward result %p not aligned to 8", p)
	}
	if !IsAligned(p, 1) {
		t.Error("every address is aligned to 1")
	}
	if !IsAligned(unsafe.Add(p, 3), 1) {
		t.Error("every address is aligned to 1")
	}
	if IsAligned(unsafe.Add(p, 4), 8) {
		t.Error("p+4 cannot be aligned to 8 when p is")
	}
	if !IsAligned(nil, 8) {
		t.Error("nil is trivially aligned")
	}
}

func TestForward(t *testing.T) {
	var buf [128]byte
	base := unsafe.Pointer(&buf[0])

	t.Run("fits with padding", func(t *testing.T) {
		p := unsafe.Add(base, 1) // guaranteed misaligned for align > 1
		got, ok := Forward(p, 127, 8, 64)
		if !ok {
			t.Fatal("Forward failed with ample room")
		}
		if !IsAligned(got, 8) {
			t.Errorf("result %p not aligned to 8", got)
		}
		if uintptr(got) < uintptr(p) || uintptr(got)+64 > uintptr(p)+127 {
			t.Error("result window escapes the input window")
		}
	})

	t.Run("already aligned keeps address", func(t *testing.T) {
		p, ok := Forward(base, 128, 8, 8)
		if !ok {
			t.Fatal("Forward failed")
		}
		got, ok := Forward(p, 64, 8, 64)
		if !ok {
			t.Fatal("Forward failed on aligned input")
		}
		if got != p {
			t.Errorf("aligned input moved from %p to %p", p, got)
		}
	})

	t.Run("exact fit", func(t *testing.T) {
		p, _ := Forward(base, 128, 8, 8)
		if _, ok := Forward(p, 64, 8, 64); !ok {
			t.Error("need == avail with zero padding should fit")
		}
	})

	t.Run("no room after padding", func(t *testing.T) {
		p, _ := Forward(base, 128, 8, 8)
		misaligned := unsafe.Add(p, 1)
		if _, ok := Forward(misaligned, 64, 8, 64); ok {
			t.Error("64 bytes cannot fit in 64 bytes after nonzero padding")
		}
	})

	t.Run("need exceeds avail", func(t *testing.T) {
		if _, ok := Forward(base, 16, 1, 17); ok {
			t.Error("need larger than avail should fail")
		}
	})

	t.Run("zero need", func(t *testing.T) {
		got, ok := Forward(base, 16, 8, 0)
		if !ok {
			t.Error("zero need should always fit when padding fits")
		}
		if !IsAligned(got, 8) {
			t.Error("result still must be aligned")
		}
	})

	t.Run("nil pointer", func(t *testing.T) {
		if _, ok := Forward(nil, 128, 8, 8); ok {
			t.Error("nil input should fail")
		}
	})
}

func FuzzForward(f *testing.F) {
	f.Add(uint8(0), uint16(64), uint8(3), uint16(8))
	f.Add(uint8(1), uint16(64), uint8(3), uint16(64))
	f.Add(uint8(7), uint16(0), uint8(0), uint16(0))
	f.Add(uint8(3), uint16(255), uint8(6), uint16(100))

	var buf [1024]byte

	f.Fuzz(func(t *testing.T, off uint8, avail uint16, alignExp uint8, need uint16) {
		if int(off)+int(avail) > len(buf) {
			avail = uint16(len(buf) - int(off))
		}
		align := uintptr(1) << (alignExp % 7)
		p := unsafe.Add(unsafe.Pointer(&buf[0]), int(off))

		got, ok := Forward(p, uintptr(avail), align, uintptr(need))
		if !ok {
			return
		}
		if !IsAligned(got, align) {
			t.Fatalf("result %p not aligned to %d", got, align)
		}
		if uintptr(got) < uintptr(p) {
			t.Fatal("result moved backwards")
		}
		if uintptr(got)+uintptr(need) > uintptr(p)+uintptr(avail) {
			t.Fatalf("need %d escapes window of %d bytes", need, avail)
		}
	})
}
