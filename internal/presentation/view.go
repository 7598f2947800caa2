// Package presentation holds the data the terminal hands to a renderer. Nothing
// here draws; a renderer subscribes to a Hub and turns views into pixels.
package presentation

import "time"

// WheelKind names the option set shown on the radial wheel.
type WheelKind string

const (
	WheelMedication     WheelKind = "medication"
	WheelPatient        WheelKind = "patient"
	WheelMedicationEdit WheelKind = "medication_edit"
)

// NoSector is the Highlight value when no sector is hovered.
const NoSector = -1

type Wheel struct {
	Visible   bool      `json:"visible"`
	Kind      WheelKind `json:"kind,omitempty"`
	Options   []string  `json:"options,omitempty"`
	Highlight int       `json:"highlight"`
}

// PanelKind identifies the side panel being shown.
type PanelKind string

const (
	PanelPatientInfo      PanelKind = "patient_info"
	PanelMedicationInfo   PanelKind = "medication_info"
	PanelMedicationEditor PanelKind = "medication_editor"
	PanelTimeEditor       PanelKind = "time_editor"
)

type Panel struct {
	Visible bool      `json:"visible"`
	Kind    PanelKind `json:"kind,omitempty"`
	Title   string    `json:"title,omitempty"`
	Lines   []string  `json:"lines,omitempty"`
}

// View is the complete description of what the screen should show for one
// session state.
type View struct {
	Mode        string `json:"mode"`
	Patient     string `json:"patient"`
	Instruction string `json:"instruction"`
	Wheel       Wheel  `json:"wheel"`
	Panel       Panel  `json:"panel"`
}

// NoticeKind distinguishes warning and success notices.
type NoticeKind string

const (
	NoticeWarning NoticeKind = "warning"
	NoticeSuccess NoticeKind = "success"
)

// Notice is a transient message that hides itself after Duration.
// A zero Duration keeps it up until it is hidden explicitly.
type Notice struct {
	Kind     NoticeKind    `json:"kind"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
}

// Status is the connection state line.
type Status struct {
	Connected bool   `json:"connected"`
	Text      string `json:"text"`
}
