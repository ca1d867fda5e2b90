package resource

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/memkit"
)

// Trace wraps a resource and logs its traffic: every Allocate and
// Deallocate at debug level, allocation failures at warn. The log carries
// the resource name, sizes and addresses, which is usually enough to
// reconstruct a lifetime bug from the output alone.
type Trace struct {
	inner memkit.Resource
	name  string
	log   *zap.Logger
}

// NewTrace wraps inner, logging through log. A nil log falls back to the
// package logger set with memkit.SetLogger.
func NewTrace(inner memkit.Resource, log *zap.Logger) *Trace {
	if log == nil {
		log = memkit.Logger()
	}
	return &Trace{
		inner: inner,
		name:  "trace(" + nameOf(inner) + ")",
		log:   log,
	}
}

func (t *Trace) Name() string { return t.name }

// Unwrap exposes the wrapped resource so capability queries see through
// the tracing layer.
func (t *Trace) Unwrap() memkit.Resource { return t.inner }

// Allocate forwards to the wrapped resource and logs the outcome.
func (t *Trace) Allocate(n uintptr) (unsafe.Pointer, error) {
	p, err := t.inner.Allocate(n)
	if err != nil {
		t.log.Warn("allocate failed",
			zap.String("resource", t.name),
			zap.Uint64("size", uint64(n)),
			zap.Error(err))
		return nil, err
	}
	t.log.Debug("allocate",
		zap.String("resource", t.name),
		zap.Uint64("size", uint64(n)),
		zap.Uintptr("addr", uintptr(p)))
	return p, nil
}

// Deallocate logs the release and forwards it.
func (t *Trace) Deallocate(p unsafe.Pointer, n uintptr) {
	t.log.Debug("deallocate",
		zap.String("resource", t.name),
		zap.Uint64("size", uint64(n)),
		zap.Uintptr("addr", uintptr(p)))
	t.inner.Deallocate(p, n)
}
