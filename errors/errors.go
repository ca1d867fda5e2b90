package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAllocate   Phase = "allocate"   // reserving memory
	PhaseDeallocate Phase = "deallocate" // releasing memory
	PhaseGuest      Phase = "guest"      // guest allocator calls
	PhaseMap        Phase = "map"        // page mapping
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation     Kind = "allocation"
	KindExhausted      Kind = "exhausted"
	KindDoubleFree     Kind = "double_free"
	KindForeignPointer Kind = "foreign_pointer"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
	KindNotInitialized Kind = "not_initialized"
	KindClosed         Kind = "closed"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Resource string
	Size     uintptr
	Addr     uintptr
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Resource != "" {
		b.WriteString(" in ")
		b.WriteString(e.Resource)
	}

	if e.Size != 0 || e.Addr != 0 {
		b.WriteString(": ")
		if e.Size != 0 && e.Addr != 0 {
			fmt.Fprintf(&b, "size %d, addr 0x%x", e.Size, e.Addr)
		} else if e.Size != 0 {
			fmt.Fprintf(&b, "size %d", e.Size)
		} else {
			fmt.Fprintf(&b, "addr 0x%x", e.Addr)
		}
	}

	if e.Detail != "" {
		if e.Size != 0 || e.Addr != 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Resource sets the name of the resource the error originated from
func (b *Builder) Resource(name string) *Builder {
	b.err.Resource = name
	return b
}

// Size sets the request or allocation size in bytes
func (b *Builder) Size(n uintptr) *Builder {
	b.err.Size = n
	return b
}

// Addr sets the offending address
func (b *Builder) Addr(p uintptr) *Builder {
	b.err.Addr = p
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AllocationFailed creates an allocation failure error
func AllocationFailed(resource string, size uintptr, cause error) *Error {
	return &Error{
		Phase:    PhaseAllocate,
		Kind:     KindAllocation,
		Resource: resource,
		Size:     size,
		Detail:   "allocate",
		Cause:    cause,
	}
}

// Exhausted creates an error for a resource that cannot satisfy the request
// out of its remaining capacity
func Exhausted(resource string, size, avail uintptr) *Error {
	return &Error{
		Phase:    PhaseAllocate,
		Kind:     KindExhausted,
		Resource: resource,
		Size:     size,
		Detail:   fmt.Sprintf("%d bytes available", avail),
	}
}

// DoubleFree creates an error for an address released twice
func DoubleFree(resource string, addr uintptr) *Error {
	return &Error{
		Phase:    PhaseDeallocate,
		Kind:     KindDoubleFree,
		Resource: resource,
		Addr:     addr,
		Detail:   "address already released",
	}
}

// ForeignPointer creates an error for an address the resource never handed out
func ForeignPointer(resource string, addr uintptr) *Error {
	return &Error{
		Phase:    PhaseDeallocate,
		Kind:     KindForeignPointer,
		Resource: resource,
		Addr:     addr,
		Detail:   "address not allocated by this resource",
	}
}

// SizeMismatch creates an error for a release whose size disagrees with the
// recorded allocation size
func SizeMismatch(resource string, addr, got, want uintptr) *Error {
	return &Error{
		Phase:    PhaseDeallocate,
		Kind:     KindInvalidInput,
		Resource: resource,
		Addr:     addr,
		Detail:   fmt.Sprintf("size %d does not match allocated size %d", got, want),
	}
}

// OutOfBounds creates an error for a guest address outside linear memory
func OutOfBounds(resource string, addr, size, limit uintptr) *Error {
	return &Error{
		Phase:    PhaseGuest,
		Kind:     KindOutOfBounds,
		Resource: resource,
		Addr:     addr,
		Size:     size,
		Detail:   fmt.Sprintf("linear memory is %d bytes", limit),
	}
}

// Closed creates an error for a resource used after Close or Release
func Closed(phase Phase, resource string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindClosed,
		Resource: resource,
		Detail:   "resource closed",
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// MapFailed creates a page mapping failure error
func MapFailed(size uintptr, cause error) *Error {
	return &Error{
		Phase:  PhaseMap,
		Kind:   KindAllocation,
		Size:   size,
		Detail: "map pages",
		Cause:  cause,
	}
}

// GuestCall creates an error for a failed guest allocator export call
func GuestCall(fn string, cause error) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("call %s", fn),
		Cause:  cause,
	}
}

// Leak describes a single allocation that was never released
type Leak struct {
	Addr uintptr
	Size uintptr
}

// LeaksError is returned when a checked resource is closed while
// allocations are still live
type LeaksError struct {
	Resource string
	Leaks    []Leak
}

// NewLeaksError creates an error from the live allocations of a resource
func NewLeaksError(resource string, leaks []Leak) *LeaksError {
	return &LeaksError{
		Resource: resource,
		Leaks:    leaks,
	}
}

func (e *LeaksError) Error() string {
	if len(e.Leaks) == 0 {
		return "[deallocate] leak: no allocations recorded"
	}

	var total uintptr
	for _, l := range e.Leaks {
		total += l.Size
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d leaked allocation(s), %s total:\n",
		e.Resource, len(e.Leaks), FormatBytes(total))

	for _, l := range e.Leaks {
		fmt.Fprintf(&b, "  - 0x%x: %s\n", l.Addr, FormatBytes(l.Size))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *LeaksError) Is(target error) bool {
	_, ok := target.(*LeaksError)
	return ok
}

// FormatBytes renders a byte count in human-readable binary units
func FormatBytes(n uintptr) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uintptr(unit), 0
	for n/div >= unit && exp < 4 {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTP"[exp])
}
