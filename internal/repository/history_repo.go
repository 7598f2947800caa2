package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bedside_terminal/internal/models"

	"github.com/google/uuid"
)

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite { return &HistorySQLite{db: db} }

var _ HistoryRepo = (*HistorySQLite)(nil)

const (
	insertHistorySQL = `
		INSERT INTO medication_history (id, medication, taken_at, scheduled_time, taken, next_dose_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	selectHistorySQL = `SELECT id, medication, taken_at, scheduled_time, taken, next_dose_at FROM medication_history`
	clearHistorySQL  = `DELETE FROM medication_history`
)

// AppendOne inserts rec. A missing ID is generated; timestamps are stored in UTC.
func (r *HistorySQLite) AppendOne(ctx context.Context, rec models.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertHistorySQL,
		rec.ID,
		strings.TrimSpace(rec.Medication),
		rec.TakenAt.UTC(),
		rec.ScheduledTime.String(),
		rec.Taken,
		rec.NextDoseAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert history for %q: %w", rec.Medication, err)
	}
	return nil
}

// LoadAll returns the full history ordered by taken_at ascending.
func (r *HistorySQLite) LoadAll(ctx context.Context) ([]models.HistoryRecord, error) {
	return r.List(ctx, HistoryFilter{})
}

// List returns records filtered by [From, To] (inclusive) and/or medication, ordered ASC.
func (r *HistorySQLite) List(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "taken_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "taken_at <= ?")
		args = append(args, f.To.UTC())
	}
	if med := strings.TrimSpace(f.Medication); med != "" {
		conds = append(conds, "medication = ?")
		args = append(args, med)
	}

	q := selectHistorySQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY taken_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryRecord, 0, 64)
	for rows.Next() {
		var (
			rec       models.HistoryRecord
			scheduled string
			takenAt   time.Time
			nextDose  time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Medication, &takenAt, &scheduled, &rec.Taken, &nextDose); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if rec.ScheduledTime, err = models.ParseTimeOfDay(scheduled); err != nil {
			return nil, fmt.Errorf("decode scheduled time of %s: %w", rec.ID, err)
		}
		rec.TakenAt = takenAt.UTC()
		rec.NextDoseAt = nextDose.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear removes every record. It exists for the admin surface only; the
// terminal itself never deletes history.
func (r *HistorySQLite) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearHistorySQL); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
