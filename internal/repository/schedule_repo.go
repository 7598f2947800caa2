package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bedside_terminal/internal/models"
)

type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite {
	return &ScheduleSQLite{db: db}
}

var _ ScheduleRepo = (*ScheduleSQLite)(nil)

const (
	deleteSchedulesSQL = `DELETE FROM medication_schedules`

	insertScheduleSQL = `
		INSERT INTO medication_schedules (position, name, enabled, dose_times)
		VALUES (?, ?, ?, ?)
	`

	selectSchedulesSQL = `
		SELECT name, enabled, dose_times
		FROM medication_schedules ORDER BY position ASC
	`
)

// marshalDoseTimes stores dose times as a JSON array of "HH:mm", ascending.
func marshalDoseTimes(times []models.TimeOfDay) (string, error) {
	strs := make([]string, 0, len(times))
	for _, t := range models.SortTimes(times) {
		strs = append(strs, t.String())
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalDoseTimes parses the JSON array written by marshalDoseTimes.
func unmarshalDoseTimes(s string) ([]models.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal([]byte(s), &strs); err != nil {
		return nil, err
	}
	out := make([]models.TimeOfDay, 0, len(strs))
	for _, str := range strs {
		t, err := models.ParseTimeOfDay(str)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ReplaceAll overwrites the whole schedule set in one transaction.
// Insertion order of schedules is preserved as their position.
func (r *ScheduleSQLite) ReplaceAll(ctx context.Context, schedules []models.MedicationSchedule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace schedules: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteSchedulesSQL); err != nil {
		return fmt.Errorf("clear schedules: %w", err)
	}
	for i, s := range schedules {
		times, err := marshalDoseTimes(s.DoseTimes)
		if err != nil {
			return fmt.Errorf("marshal dose times for %q: %w", s.Name, err)
		}
		if _, err := tx.ExecContext(ctx, insertScheduleSQL, i, s.Name, s.Enabled, times); err != nil {
			return fmt.Errorf("insert schedule %q: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schedules: %w", err)
	}
	return nil
}

// LoadAll returns every schedule in insertion order.
func (r *ScheduleSQLite) LoadAll(ctx context.Context) ([]models.MedicationSchedule, error) {
	rows, err := r.db.QueryContext(ctx, selectSchedulesSQL)
	if err != nil {
		return nil, fmt.Errorf("select schedules: %w", err)
	}
	defer rows.Close()

	out := make([]models.MedicationSchedule, 0, 8)
	for rows.Next() {
		var (
			s     models.MedicationSchedule
			times string
		)
		if err := rows.Scan(&s.Name, &s.Enabled, &times); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if s.DoseTimes, err = unmarshalDoseTimes(times); err != nil {
			return nil, fmt.Errorf("decode dose times for %q: %w", s.Name, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
