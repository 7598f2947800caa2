package handlers

import (
	"context"

	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/protocol"
	"bedside_terminal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// ---- Service Mocks ----

type mockScheduleBook struct {
	list []models.MedicationSchedule
	err  error
}

func (m *mockScheduleBook) ListSchedules(ctx context.Context) ([]models.MedicationSchedule, error) {
	return m.list, m.err
}

func (m *mockScheduleBook) SeedSchedules(ctx context.Context, seed []models.MedicationSchedule) (bool, error) {
	return false, nil
}

type mockHistoryLog struct {
	resp       []models.HistoryRecord
	err        error
	clearErr   error
	lastFilter service.HistoryFilter
	clears     int
}

func (m *mockHistoryLog) LoadHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	return m.resp, m.err
}

func (m *mockHistoryLog) ListHistory(ctx context.Context, f service.HistoryFilter) ([]models.HistoryRecord, error) {
	m.lastFilter = f
	return m.resp, m.err
}

func (m *mockHistoryLog) ClearHistory(ctx context.Context) error {
	m.clears++
	return m.clearErr
}

type mockTerminal struct {
	snap service.Snapshot
}

func (m *mockTerminal) Start(ctx context.Context) error                     { return nil }
func (m *mockTerminal) Run(ctx context.Context, events <-chan protocol.Event) {}
func (m *mockTerminal) Snapshot() service.Snapshot                          { return m.snap }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, hub *presentation.Hub, g prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, hub, g, nil)
	return h.InitRoutes()
}
