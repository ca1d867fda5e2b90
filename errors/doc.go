// Package errors provides structured error types for the memkit library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: resource name, request size, offending
// address, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAllocate, errors.KindExhausted).
//		Resource("arena").
//		Size(4096).
//		Detail("192 bytes available").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationFailed("heap", 4096, cause)
//	err := errors.DoubleFree("checked(arena)", addr)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
