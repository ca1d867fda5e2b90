// Package align provides internal pointer and size alignment arithmetic.
//
// This package contains the rounding helpers shared by the buffer and the
// concrete resources. All align arguments are powers of two; results for
// other values are unspecified.
//
// # Contents
//
//   - To: round a size up to an alignment boundary
//   - Forward: advance a pointer to an alignment boundary within a window
//   - IsAligned, IsPow2: predicates for validation
//
// This package is internal to memkit.
package align
