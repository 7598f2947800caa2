package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bedside_terminal/internal/metrics"
	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/service"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{}, presentation.NewHub(1, nil), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["status"] != "ok" || out["renderers"] != float64(0) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetSession(t *testing.T) {
	term := &mockTerminal{snap: service.Snapshot{Mode: "NurseMode", Patient: "Bed 4", Doses: 2}}
	r := newTestRouter(&service.Service{Terminal: term}, nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("session status=%d body=%s", w.Code, w.Body.String())
	}
	var snap service.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Mode != "NurseMode" || snap.Patient != "Bed 4" || snap.Doses != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// Without a terminal the endpoint reports unavailability.
	r = newTestRouter(&service.Service{}, nil, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestGetSchedules(t *testing.T) {
	book := &mockScheduleBook{list: []models.MedicationSchedule{
		{Name: "Aspirin", Enabled: true, DoseTimes: []models.TimeOfDay{models.NewTimeOfDay(2, 0), models.NewTimeOfDay(14, 0)}},
	}}
	r := newTestRouter(&service.Service{ScheduleBook: book}, nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("schedules status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"dose_times":["02:00","14:00"]`) {
		t.Fatalf("dose times not serialized as HH:mm: %s", w.Body.String())
	}

	book.err = errors.New("db locked")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "db locked") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.DoseDecision("allowed")

	r := newTestRouter(&service.Service{}, nil, reg)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `bedside_dosing_confirmations_total{outcome="allowed"} 1`) {
		t.Fatalf("dose metric missing:\n%s", w.Body.String())
	}
}

func TestSwaggerUI(t *testing.T) {
	r := newTestRouter(&service.Service{}, nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("swagger status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "swagger") {
		t.Fatalf("unexpected swagger body: %.200s", w.Body.String())
	}
}
