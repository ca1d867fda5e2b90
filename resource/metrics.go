package resource

import (
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wippyai/memkit"
)

var (
	metricsAllocsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memkit_resource_allocs_total",
		Help: "Total number of reservations made from a resource",
	}, []string{"resource"})

	metricsAllocatedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memkit_resource_allocated_bytes_total",
		Help: "Total bytes reserved from a resource",
	}, []string{"resource"})

	metricsFreesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memkit_resource_frees_total",
		Help: "Total number of reservations returned to a resource",
	}, []string{"resource"})

	metricsFreedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memkit_resource_freed_bytes_total",
		Help: "Total bytes returned to a resource",
	}, []string{"resource"})

	metricsAllocFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memkit_resource_alloc_failures_total",
		Help: "Total number of failed reservation attempts",
	}, []string{"resource"})

	metricsLiveBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "memkit_resource_live_bytes",
		Help: "Bytes currently reserved and not yet returned",
	}, []string{"resource"})
)

// Metrics wraps a resource and exports its traffic to Prometheus, labeled
// by the wrapped resource's name. Two Metrics wrappers around resources
// with the same name share series.
type Metrics struct {
	inner memkit.Resource
	name  string

	allocs    prometheus.Counter
	allocated prometheus.Counter
	frees     prometheus.Counter
	freed     prometheus.Counter
	failures  prometheus.Counter
	live      prometheus.Gauge
}

// NewMetrics wraps inner with Prometheus instrumentation.
func NewMetrics(inner memkit.Resource) *Metrics {
	label := nameOf(inner)
	return &Metrics{
		inner:     inner,
		name:      "metrics(" + label + ")",
		allocs:    metricsAllocsTotal.WithLabelValues(label),
		allocated: metricsAllocatedBytes.WithLabelValues(label),
		frees:     metricsFreesTotal.WithLabelValues(label),
		freed:     metricsFreedBytes.WithLabelValues(label),
		failures:  metricsAllocFailures.WithLabelValues(label),
		live:      metricsLiveBytes.WithLabelValues(label),
	}
}

func (m *Metrics) Name() string { return m.name }

// Unwrap exposes the wrapped resource so capability queries see through
// the instrumentation.
func (m *Metrics) Unwrap() memkit.Resource { return m.inner }

// Allocate forwards to the wrapped resource and updates the counters.
func (m *Metrics) Allocate(n uintptr) (unsafe.Pointer, error) {
	p, err := m.inner.Allocate(n)
	if err != nil {
		m.failures.Inc()
		return nil, err
	}
	m.allocs.Inc()
	m.allocated.Add(float64(n))
	m.live.Add(float64(n))
	return p, nil
}

// Deallocate updates the counters and forwards the release.
func (m *Metrics) Deallocate(p unsafe.Pointer, n uintptr) {
	m.frees.Inc()
	m.freed.Add(float64(n))
	m.live.Sub(float64(n))
	m.inner.Deallocate(p, n)
}
