package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectAttempt()
	m.ConnectAttempt()
	m.ConnectFailure()
	m.SetConnected(true)
	m.LineDropped("malformed")
	m.EventDecoded("back_pressed")
	m.DoseDecision("rejected")

	if got := testutil.ToFloat64(m.connectAttempts); got != 2 {
		t.Fatalf("connect attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.connected); got != 1 {
		t.Fatalf("connected = %v, want 1", got)
	}
	m.SetConnected(false)
	if got := testutil.ToFloat64(m.connected); got != 0 {
		t.Fatalf("connected = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.linesDropped.WithLabelValues("malformed")); got != 1 {
		t.Fatalf("malformed drops = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.doseDecisions.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("rejections = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg, "bedside_stream_events_total")
	if err != nil || n != 1 {
		t.Fatalf("GatherAndCount = %d, %v", n, err)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.ConnectAttempt()
	m.SetConnected(true)
	m.LineDropped("x")
	m.StoreError("append_history")
	m.ScheduleEdited()
}
