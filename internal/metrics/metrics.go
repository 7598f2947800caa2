// Package metrics holds the terminal's prometheus collectors. All methods are
// safe on a nil *Metrics so components can run without instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bedside"

type Metrics struct {
	connectAttempts prometheus.Counter
	connectFailures prometheus.Counter
	connected       prometheus.Gauge
	bytesRead       prometheus.Counter
	linesReceived   prometheus.Counter
	linesDropped    *prometheus.CounterVec
	eventsDecoded   *prometheus.CounterVec
	modeTransitions *prometheus.CounterVec
	doseDecisions   *prometheus.CounterVec
	scheduleEdits   prometheus.Counter
	storeErrors     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stream", Name: "connect_attempts_total",
			Help: "Connection attempts to the event source.",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stream", Name: "connect_failures_total",
			Help: "Failed connection attempts to the event source.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "stream", Name: "connected",
			Help: "1 while the event stream is connected.",
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stream", Name: "read_bytes_total",
			Help: "Bytes read from the event stream.",
		}),
		linesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stream", Name: "lines_received_total",
			Help: "Complete lines framed from the event stream.",
		}),
		linesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stream", Name: "lines_dropped_total",
			Help: "Lines dropped before reaching the session, by reason.",
		}, []string{"reason"}),
		eventsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stream", Name: "events_total",
			Help: "Decoded events by kind.",
		}, []string{"kind"}),
		modeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "mode_transitions_total",
			Help: "Session mode changes by target mode.",
		}, []string{"mode"}),
		doseDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dosing", Name: "confirmations_total",
			Help: "Dose confirmations by outcome.",
		}, []string{"outcome"}),
		scheduleEdits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dosing", Name: "schedule_edits_total",
			Help: "Persisted schedule edits.",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store", Name: "errors_total",
			Help: "Store operations that failed, by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.connectAttempts, m.connectFailures, m.connected, m.bytesRead,
			m.linesReceived, m.linesDropped, m.eventsDecoded, m.modeTransitions,
			m.doseDecisions, m.scheduleEdits, m.storeErrors,
		)
	}
	return m
}

func (m *Metrics) ConnectAttempt() {
	if m == nil {
		return
	}
	m.connectAttempts.Inc()
}

func (m *Metrics) ConnectFailure() {
	if m == nil {
		return
	}
	m.connectFailures.Inc()
}

func (m *Metrics) SetConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func (m *Metrics) BytesRead(n int) {
	if m == nil {
		return
	}
	m.bytesRead.Add(float64(n))
}

func (m *Metrics) LineReceived() {
	if m == nil {
		return
	}
	m.linesReceived.Inc()
}

func (m *Metrics) LineDropped(reason string) {
	if m == nil {
		return
	}
	m.linesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) EventDecoded(kind string) {
	if m == nil {
		return
	}
	m.eventsDecoded.WithLabelValues(kind).Inc()
}

func (m *Metrics) ModeTransition(mode string) {
	if m == nil {
		return
	}
	m.modeTransitions.WithLabelValues(mode).Inc()
}

// DoseDecision counts confirmations by outcome: "allowed", "rejected" or
// "failed" when an allowed dose could not be stored.
func (m *Metrics) DoseDecision(outcome string) {
	if m == nil {
		return
	}
	m.doseDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScheduleEdited() {
	if m == nil {
		return
	}
	m.scheduleEdits.Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}
