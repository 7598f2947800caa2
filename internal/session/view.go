package session

import (
	"fmt"
	"slices"
	"strings"

	"bedside_terminal/internal/dosing"
	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
)

// Instruction text per mode.
const (
	InstructionIdle             = "Place the medication wheel on the table to begin"
	InstructionSelecting        = "Turn the wheel to your medication and place the select token to confirm"
	InstructionNursePatient     = "Nurse mode: turn the wheel to a patient and place the info token"
	InstructionNurseInactive    = "Nurse mode: place the nurse token to open the patient wheel"
	InstructionNurseViewInfo    = "Place the edit token to change medication times, or back to return"
	InstructionNurseEditMeds    = "Turn the wheel to a medication, then open your palm to adjust its time"
	InstructionNurseEditingTime = "Swipe left or right to move the time by half an hour, close your palm to save"
)

// View derives the presentation for s.
func View(s Session) presentation.View {
	v := presentation.View{
		Mode:    string(s.ModeName()),
		Patient: s.Patient,
		Wheel:   presentation.Wheel{Highlight: presentation.NoSector},
	}

	switch mode := s.Mode.(type) {
	case SelectingMedication:
		v.Instruction = InstructionSelecting
		v.Wheel = wheel(presentation.WheelMedication, names(s.Schedules), mode.Medication, mode.Sector)
		if mode.Medication != "" {
			v.Panel = medicationPanel(s, mode.Medication)
		}
	case NurseMode:
		v.Instruction = InstructionNurseInactive
		if mode.WheelActive {
			v.Instruction = InstructionNursePatient
			v.Wheel = wheel(presentation.WheelPatient, names(s.Schedules), mode.Item, mode.Sector)
		}
	case NurseViewInfo:
		v.Instruction = InstructionNurseViewInfo
		v.Panel = patientPanel(s, mode.Patient)
	case NurseEditMeds:
		v.Instruction = InstructionNurseEditMeds
		if mode.WheelActive {
			v.Wheel = wheel(presentation.WheelMedicationEdit, names(s.Schedules), mode.Hover, mode.Sector)
		}
		if mode.Editing != "" {
			v.Panel = editorPanel(s, mode.Editing)
		}
	case NurseEditingTime:
		v.Instruction = InstructionNurseEditingTime
		pair := dosing.EditedDoseTimes(mode.Candidate)
		v.Panel = presentation.Panel{
			Visible: true,
			Kind:    presentation.PanelTimeEditor,
			Title:   mode.Medication,
			Lines: []string{
				"New time: " + mode.Candidate.String(),
				"Doses will be at " + joinTimes(pair),
			},
		}
	default:
		v.Instruction = InstructionIdle
	}
	return v
}

// wheel highlights the option named selected. The event source's sector is
// used only when the name is not among the options, since option order
// follows the schedule store and may differ from the source's sectors.
func wheel(kind presentation.WheelKind, options []string, selected string, sector int) presentation.Wheel {
	highlight := slices.Index(options, selected)
	if highlight < 0 && sector >= 0 && sector < len(options) {
		highlight = sector
	}
	if highlight < 0 {
		highlight = presentation.NoSector
	}
	return presentation.Wheel{Visible: true, Kind: kind, Options: options, Highlight: highlight}
}

func medicationPanel(s Session, med string) presentation.Panel {
	p := presentation.Panel{Visible: true, Kind: presentation.PanelMedicationInfo, Title: med}
	sched, ok := models.FindSchedule(s.Schedules, med)
	if !ok || !sched.Enabled || len(sched.DoseTimes) == 0 {
		return p
	}
	p.Lines = append(p.Lines, "Dose times: "+joinTimes(sched.SortedDoseTimes()))
	return p
}

func patientPanel(s Session, patient string) presentation.Panel {
	p := presentation.Panel{Visible: true, Kind: presentation.PanelPatientInfo, Title: patient}
	for _, sched := range s.Schedules {
		line := sched.Name + ": "
		if len(sched.DoseTimes) == 0 {
			line += "no dose times"
		} else {
			line += joinTimes(sched.SortedDoseTimes())
		}
		if !sched.Enabled {
			line += " (disabled)"
		}
		if n := takenCount(s.History, sched.Name); n > 0 {
			line += fmt.Sprintf(", %d recorded", n)
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}

func editorPanel(s Session, med string) presentation.Panel {
	p := presentation.Panel{Visible: true, Kind: presentation.PanelMedicationEditor, Title: med}
	if sched, ok := models.FindSchedule(s.Schedules, med); ok && len(sched.DoseTimes) > 0 {
		p.Lines = append(p.Lines, "Dose times: "+joinTimes(sched.SortedDoseTimes()))
	} else {
		p.Lines = append(p.Lines, "No dose times set")
	}
	p.Lines = append(p.Lines, "Open your palm to adjust")
	return p
}

func names(schedules []models.MedicationSchedule) []string {
	out := make([]string, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, s.Name)
	}
	return out
}

func takenCount(history []models.HistoryRecord, med string) int {
	n := 0
	for _, rec := range history {
		if rec.Medication == med && rec.Taken {
			n++
		}
	}
	return n
}

func joinTimes(times []models.TimeOfDay) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
