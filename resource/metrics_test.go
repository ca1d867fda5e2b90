package resource

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wippyai/memkit"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(Default)

	// The vecs live in the default registry, so measure deltas.
	allocsBefore := testutil.ToFloat64(metricsAllocsTotal.WithLabelValues("heap"))
	bytesBefore := testutil.ToFloat64(metricsAllocatedBytes.WithLabelValues("heap"))
	freesBefore := testutil.ToFloat64(metricsFreesTotal.WithLabelValues("heap"))
	freedBefore := testutil.ToFloat64(metricsFreedBytes.WithLabelValues("heap"))
	liveBefore := testutil.ToFloat64(metricsLiveBytes.WithLabelValues("heap"))

	p1, err := m.Allocate(100)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := m.Allocate(28)
	if err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(metricsAllocsTotal.WithLabelValues("heap")) - allocsBefore; got != 2 {
		t.Errorf("allocs delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metricsAllocatedBytes.WithLabelValues("heap")) - bytesBefore; got != 128 {
		t.Errorf("allocated bytes delta = %v, want 128", got)
	}
	if got := testutil.ToFloat64(metricsLiveBytes.WithLabelValues("heap")) - liveBefore; got != 128 {
		t.Errorf("live bytes delta = %v, want 128", got)
	}

	m.Deallocate(p1, 100)
	m.Deallocate(p2, 28)

	if got := testutil.ToFloat64(metricsFreesTotal.WithLabelValues("heap")) - freesBefore; got != 2 {
		t.Errorf("frees delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metricsFreedBytes.WithLabelValues("heap")) - freedBefore; got != 128 {
		t.Errorf("freed bytes delta = %v, want 128", got)
	}
	if got := testutil.ToFloat64(metricsLiveBytes.WithLabelValues("heap")) - liveBefore; got != 0 {
		t.Errorf("live bytes delta after frees = %v, want 0", got)
	}
}

func TestMetricsFailures(t *testing.T) {
	parent := &recordingParent{fail: fmt.Errorf("denied")}
	m := NewMetrics(parent)

	before := testutil.ToFloat64(metricsAllocFailures.WithLabelValues("recording"))
	if _, err := m.Allocate(8); err == nil {
		t.Fatal("expected failure to propagate")
	}
	if got := testutil.ToFloat64(metricsAllocFailures.WithLabelValues("recording")) - before; got != 1 {
		t.Errorf("failures delta = %v, want 1", got)
	}
}

func TestMetricsCapabilityPassthrough(t *testing.T) {
	m := NewMetrics(Default)

	if !memkit.Has[memkit.HostAccessible](m) {
		t.Error("metrics over heap should report host accessibility")
	}
}
