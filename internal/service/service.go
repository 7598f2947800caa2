package service

import (
	"context"
	"time"

	"bedside_terminal/internal/models"
	"bedside_terminal/internal/protocol"
	"bedside_terminal/internal/repository"
)

// Dosing persists the outcomes of the dosing flows.
type Dosing interface {
	RecordAdministration(ctx context.Context, medication string, now time.Time) (models.HistoryRecord, error)
	SaveEditedTime(ctx context.Context, medication string, chosen models.TimeOfDay) ([]models.MedicationSchedule, error)
}

// ScheduleBook exposes the configured medication schedules.
type ScheduleBook interface {
	ListSchedules(ctx context.Context) ([]models.MedicationSchedule, error)
	SeedSchedules(ctx context.Context, seed []models.MedicationSchedule) (bool, error)
}

// HistoryLog exposes the append-only administration history.
type HistoryLog interface {
	LoadHistory(ctx context.Context) ([]models.HistoryRecord, error)
	ListHistory(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error)
	ClearHistory(ctx context.Context) error
}

// Terminal runs the interaction loop. Stop it by cancelling ctx.
type Terminal interface {
	Start(ctx context.Context) error
	Run(ctx context.Context, events <-chan protocol.Event)
	Snapshot() Snapshot
}

// Service aggregates all sub-services.
type Service struct {
	Dosing
	ScheduleBook
	HistoryLog
	Terminal
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, opts TerminalOptions) *Service {
	dosingSvc := NewDosingService(repos.ScheduleRepo, repos.HistoryRepo)
	schedules := NewScheduleService(repos.ScheduleRepo)
	history := NewHistoryService(repos.HistoryRepo)
	return &Service{
		Dosing:       dosingSvc,
		ScheduleBook: schedules,
		HistoryLog:   history,
		Terminal:     NewTerminalService(dosingSvc, schedules, history, opts),
	}
}
