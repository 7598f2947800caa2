package repository

import (
	"context"
	"database/sql"
	"time"

	"bedside_terminal/internal/models"
)

// ScheduleRepo is the Schedule Store contract: load everything, replace everything.
type ScheduleRepo interface {
	LoadAll(ctx context.Context) ([]models.MedicationSchedule, error)
	ReplaceAll(ctx context.Context, schedules []models.MedicationSchedule) error
}

// HistoryRepo is the append-only History Store.
type HistoryRepo interface {
	LoadAll(ctx context.Context) ([]models.HistoryRecord, error)
	AppendOne(ctx context.Context, rec models.HistoryRecord) error
	List(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error)
	Clear(ctx context.Context) error
}

// HistoryFilter narrows List. Zero values mean "no bound".
type HistoryFilter struct {
	From       time.Time
	To         time.Time
	Medication string
}

type Repository struct {
	ScheduleRepo ScheduleRepo
	HistoryRepo  HistoryRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ScheduleRepo: NewScheduleSQLite(db),
		HistoryRepo:  NewHistorySQLite(db),
	}
}
