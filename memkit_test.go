package memkit

import (
	"testing"
	"unsafe"
)

type plainResource struct{}

func (plainResource) Allocate(n uintptr) (unsafe.Pointer, error) {
	if n == 0 {
		n = 1
	}
	b := make([]byte, n)
	return unsafe.Pointer(unsafe.SliceData(b)), nil
}

func (plainResource) Deallocate(unsafe.Pointer, uintptr) {}

type hostOnlyResource struct{ plainResource }

func (hostOnlyResource) AccessibleFromHost() {}

type guestOnlyResource struct{ plainResource }

func (guestOnlyResource) AccessibleFromGuest() {}

type sharedTestResource struct{ plainResource }

func (sharedTestResource) AccessibleFromHost()  {}
func (sharedTestResource) AccessibleFromGuest() {}

// passthrough forwards to an inner resource without re-declaring its
// capabilities, the shape every diagnostic wrapper has.
type passthrough struct{ inner Resource }

func (w passthrough) Allocate(n uintptr) (unsafe.Pointer, error) { return w.inner.Allocate(n) }
func (w passthrough) Deallocate(p unsafe.Pointer, n uintptr)     { w.inner.Deallocate(p, n) }
func (w passthrough) Unwrap() Resource                           { return w.inner }

// opaque forwards but does not expose its inner resource.
type opaque struct{ inner Resource }

func (w opaque) Allocate(n uintptr) (unsafe.Pointer, error) { return w.inner.Allocate(n) }
func (w opaque) Deallocate(p unsafe.Pointer, n uintptr)     { w.inner.Deallocate(p, n) }

func TestHas(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{
			name: "host marker on host resource",
			got:  Has[HostAccessible](hostOnlyResource{}),
			want: true,
		},
		{
			name: "guest marker on host resource",
			got:  Has[GuestAccessible](hostOnlyResource{}),
			want: false,
		},
		{
			name: "guest marker on guest resource",
			got:  Has[GuestAccessible](guestOnlyResource{}),
			want: true,
		},
		{
			name: "host marker on guest resource",
			got:  Has[HostAccessible](guestOnlyResource{}),
			want: false,
		},
		{
			name: "both markers on shared resource",
			got: Has[HostAccessible](sharedTestResource{}) &&
				Has[GuestAccessible](sharedTestResource{}),
			want: true,
		},
		{
			name: "no markers on plain resource",
			got:  Has[HostAccessible](plainResource{}) || Has[GuestAccessible](plainResource{}),
			want: false,
		},
		{
			name: "nil resource",
			got:  Has[HostAccessible](nil),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestHasUnwrapsWrappers(t *testing.T) {
	tests := []struct {
		name string
		r    Resource
		want bool
	}{
		{
			name: "single wrapper",
			r:    passthrough{inner: hostOnlyResource{}},
			want: true,
		},
		{
			name: "nested wrappers",
			r:    passthrough{inner: passthrough{inner: hostOnlyResource{}}},
			want: true,
		},
		{
			name: "wrapper over plain resource",
			r:    passthrough{inner: plainResource{}},
			want: false,
		},
		{
			name: "opaque wrapper hides capability",
			r:    opaque{inner: hostOnlyResource{}},
			want: false,
		},
		{
			name: "wrapper over nil",
			r:    passthrough{inner: nil},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Has[HostAccessible](tt.r); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasRefinedInterface(t *testing.T) {
	// A refined interface is a capability query too: asking for
	// HostResource demands Allocate/Deallocate plus the marker.
	if !Has[HostResource](hostOnlyResource{}) {
		t.Error("host resource should satisfy HostResource")
	}
	if Has[SharedResource](hostOnlyResource{}) {
		t.Error("host-only resource should not satisfy SharedResource")
	}
	if !Has[SharedResource](sharedTestResource{}) {
		t.Error("shared resource should satisfy SharedResource")
	}
}
