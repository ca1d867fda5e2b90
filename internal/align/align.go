package align

import "unsafe"

// To rounds n up to the next multiple of align. align must be zero or a
// power of two.
func To(n, align uintptr) uintptr {
	if align == 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// IsPow2 reports whether n is a power of two.
func IsPow2(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// IsAligned reports whether p is a multiple of align.
func IsAligned(p unsafe.Pointer, align uintptr) bool {
	if align == 0 {
		return true
	}
	return uintptr(p)&(align-1) == 0
}

// Forward returns the first address at or after p that is a multiple of
// align and still leaves need bytes inside the avail bytes starting at p.
// The second result reports whether such an address exists.
//
// Pointer arithmetic stays on unsafe.Add so the result keeps pointing into
// the allocation p came from.
func Forward(p unsafe.Pointer, avail, align, need uintptr) (unsafe.Pointer, bool) {
	if p == nil {
		return nil, false
	}
	pad := -uintptr(p) & (align - 1)
	if need > avail || pad > avail-need {
		return nil, false
	}
	return unsafe.Add(p, pad), true
}
