package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// One writer: schedules and history are small and written by a single terminal.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaMedicationSchedules = `
CREATE TABLE IF NOT EXISTS medication_schedules (
    position INTEGER NOT NULL,
    name TEXT PRIMARY KEY,
    enabled BOOLEAN NOT NULL,
    dose_times TEXT NOT NULL
);
`

const schemaMedicationHistory = `
CREATE TABLE IF NOT EXISTS medication_history (
    id TEXT PRIMARY KEY,
    medication TEXT NOT NULL,
    taken_at TIMESTAMP NOT NULL,
    scheduled_time TEXT NOT NULL,
    taken BOOLEAN NOT NULL,
    next_dose_at TIMESTAMP NOT NULL
);
`

const indexHistoryByMedication = `
CREATE INDEX IF NOT EXISTS idx_medication_history_med_taken
    ON medication_history (medication, taken_at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range []string{
		schemaMedicationSchedules,
		schemaMedicationHistory,
		indexHistoryByMedication,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
