package session

import (
	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
)

// ModeName is the stable name of a mode, used in views, logs and metrics.
type ModeName string

const (
	ModeIdle                ModeName = "Idle"
	ModeSelectingMedication ModeName = "SelectingMedication"
	ModeNurse               ModeName = "NurseMode"
	ModeNurseViewInfo       ModeName = "NurseViewInfo"
	ModeNurseEditMeds       ModeName = "NurseEditMeds"
	ModeNurseEditingTime    ModeName = "NurseEditingTime"
)

// Mode is one of the concrete mode structs below. Nurse-only data lives on
// the nurse variants, so a patient-flow mode can never carry it.
type Mode interface {
	Name() ModeName
	mode()
}

// NurseTarget is what the nurse wheel is currently selecting.
type NurseTarget string

const (
	PatientSelection NurseTarget = "patient_selection"
	MedicationEdit   NurseTarget = "medication_edit"
)

type Idle struct{}

// SelectingMedication is the patient flow with the medication wheel open.
type SelectingMedication struct {
	Sector     int
	Medication string
}

// NurseMode is the nurse flow choosing a patient.
type NurseMode struct {
	WheelActive bool
	Sector      int
	Item        string
}

// NurseViewInfo shows the active patient's medication overview.
type NurseViewInfo struct {
	Patient string
}

// GestureEdit is a time chosen in gesture mode for a medication.
type GestureEdit struct {
	Medication string
	Time       models.TimeOfDay
	// Saved is cleared when persisting the edit failed.
	Saved bool
}

// NurseEditMeds is the nurse flow choosing a medication to edit.
type NurseEditMeds struct {
	WheelActive bool
	Sector      int
	Hover       string
	// Editing is the medication whose editor is open, if any.
	Editing string
	// LastEdit is the most recent gesture edit, kept so closing gesture mode
	// can persist it if it is not yet saved.
	LastEdit *GestureEdit
}

// NurseEditingTime is gesture mode adjusting a candidate dose time. Editor is
// restored when gesture mode ends.
type NurseEditingTime struct {
	Medication string
	Candidate  models.TimeOfDay
	Editor     NurseEditMeds
}

func (Idle) Name() ModeName                { return ModeIdle }
func (SelectingMedication) Name() ModeName { return ModeSelectingMedication }
func (NurseMode) Name() ModeName           { return ModeNurse }
func (NurseViewInfo) Name() ModeName       { return ModeNurseViewInfo }
func (NurseEditMeds) Name() ModeName       { return ModeNurseEditMeds }
func (NurseEditingTime) Name() ModeName    { return ModeNurseEditingTime }

func (Idle) mode()                {}
func (SelectingMedication) mode() {}
func (NurseMode) mode()           {}
func (NurseViewInfo) mode()       {}
func (NurseEditMeds) mode()       {}
func (NurseEditingTime) mode()    {}

// TargetOf reports the nurse wheel target of m. ok is false outside the
// modes that carry a nurse wheel.
func TargetOf(m Mode) (target NurseTarget, ok bool) {
	switch m.(type) {
	case NurseMode:
		return PatientSelection, true
	case NurseEditMeds, NurseEditingTime:
		return MedicationEdit, true
	default:
		return "", false
	}
}

// IsNurse reports whether m belongs to the nurse flow.
func IsNurse(m Mode) bool {
	switch m.(type) {
	case NurseMode, NurseViewInfo, NurseEditMeds, NurseEditingTime:
		return true
	default:
		return false
	}
}

func newNurseMode() NurseMode {
	return NurseMode{WheelActive: true, Sector: presentation.NoSector}
}
