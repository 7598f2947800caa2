// Package session is the terminal's interaction state machine. A Machine turns
// (Session, Event, now) into a new Session plus the side effects the caller
// has to carry out; it never touches storage or the screen itself.
package session

import "bedside_terminal/internal/models"

// Session is the whole mutable state of the terminal. Schedules and History
// are caches of the stores, refreshed by the caller after it runs commands.
type Session struct {
	Mode      Mode
	Patient   string
	Schedules []models.MedicationSchedule
	History   []models.HistoryRecord
}

// New returns an idle session for patient.
func New(patient string) Session {
	return Session{Mode: Idle{}, Patient: patient}
}

// ModeName is a nil-safe shortcut for s.Mode.Name().
func (s Session) ModeName() ModeName {
	if s.Mode == nil {
		return ModeIdle
	}
	return s.Mode.Name()
}

// Clone returns a copy that shares no slices with s.
func (s Session) Clone() Session {
	out := s
	out.Schedules = models.CloneSchedules(s.Schedules)
	if s.History != nil {
		out.History = append([]models.HistoryRecord(nil), s.History...)
	}
	switch m := s.Mode.(type) {
	case NurseEditMeds:
		m.LastEdit = cloneEdit(m.LastEdit)
		out.Mode = m
	case NurseEditingTime:
		m.Editor.LastEdit = cloneEdit(m.Editor.LastEdit)
		out.Mode = m
	}
	return out
}

func cloneEdit(e *GestureEdit) *GestureEdit {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
