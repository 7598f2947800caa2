package models

import "time"

// HistoryRecord is a single administration entry. Records are append-only.
type HistoryRecord struct {
	ID            string    `json:"id"`
	Medication    string    `json:"medication"`
	TakenAt       time.Time `json:"taken_at"`
	ScheduledTime TimeOfDay `json:"scheduled_time"` // wall-clock time at the moment of taking
	Taken         bool      `json:"taken"`
	NextDoseAt    time.Time `json:"next_dose_at"` // bookkeeping next dose, TakenAt + 12h
}
