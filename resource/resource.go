package resource

import (
	"fmt"

	"github.com/wippyai/memkit"
)

// maxAlign is the strictest alignment any Go type requires. Resources in
// this package hand out addresses on this boundary so a buffer of any
// element type finds its aligned sub-range at the start of the reservation.
const maxAlign = 8

// Named is implemented by resources that identify themselves for logs,
// metric labels and error messages.
type Named interface {
	Name() string
}

// nameOf labels a resource for diagnostics: its Name when it has one, its
// Go type otherwise.
func nameOf(r memkit.Resource) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}
