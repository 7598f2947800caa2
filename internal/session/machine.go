package session

import (
	"fmt"
	"time"

	"bedside_terminal/internal/dosing"
	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/protocol"
)

// Defaults for Config fields left zero.
const (
	DefaultPatient         = "Patient"
	DefaultSwipeStep       = 30 * time.Minute
	DefaultWarningDuration = 5 * time.Second
	DefaultSuccessDuration = 3 * time.Second
)

// DefaultEditTime seeds gesture mode when the medication has no dose times.
const DefaultEditTime = "08:00"

// Config tunes a Machine.
type Config struct {
	DefaultPatient string
	// DefaultEditTime is "HH:mm"; an empty or invalid value means 08:00.
	DefaultEditTime string
	SwipeStep       time.Duration
	WarningDuration time.Duration
	SuccessDuration time.Duration
}

// CommandKind names a side effect the caller must perform.
type CommandKind string

const (
	// CmdReloadSchedules refreshes Session.Schedules from the schedule store.
	CmdReloadSchedules CommandKind = "reload_schedules"
	// CmdRecordDose appends an administration of Medication taken At.
	CmdRecordDose CommandKind = "record_dose"
	// CmdSaveEditedTime stores the dose pair derived from Time for Medication.
	CmdSaveEditedTime CommandKind = "save_edited_time"
)

type Command struct {
	Kind       CommandKind
	Medication string
	At         time.Time
	Time       models.TimeOfDay
}

// DoseDecision records a policy evaluation made while handling an event.
type DoseDecision struct {
	Medication string
	Verdict    dosing.Verdict
}

// Result is everything Handle produces for one event.
type Result struct {
	Session  Session
	Commands []Command
	// Notices are shown after the commands succeed. Success notices must be
	// dropped if a command fails.
	Notices []presentation.Notice
	Logs    []string
	// DismissNotices hides any notice still on screen before new ones appear.
	DismissNotices bool
	// Ignored is set when the event has no meaning in the current mode.
	Ignored bool
	Dose    *DoseDecision
}

// Machine implements the mode transitions. It holds only configuration and is
// safe for concurrent use.
type Machine struct {
	cfg      Config
	editTime models.TimeOfDay
}

func NewMachine(cfg Config) *Machine {
	if cfg.DefaultPatient == "" {
		cfg.DefaultPatient = DefaultPatient
	}
	if cfg.SwipeStep <= 0 {
		cfg.SwipeStep = DefaultSwipeStep
	}
	if cfg.WarningDuration <= 0 {
		cfg.WarningDuration = DefaultWarningDuration
	}
	if cfg.SuccessDuration <= 0 {
		cfg.SuccessDuration = DefaultSuccessDuration
	}
	editTime, err := models.ParseTimeOfDay(cfg.DefaultEditTime)
	if err != nil {
		editTime = models.MustParseTimeOfDay(DefaultEditTime)
	}
	return &Machine{cfg: cfg, editTime: editTime}
}

// NewSession returns the initial session.
func (m *Machine) NewSession() Session {
	return New(m.cfg.DefaultPatient)
}

// DefaultPatient is the identity restored when nurse mode ends.
func (m *Machine) DefaultPatient() string {
	return m.cfg.DefaultPatient
}

// WarningDuration is how long warning notices stay up.
func (m *Machine) WarningDuration() time.Duration {
	return m.cfg.WarningDuration
}

// Handle applies ev to s. s is not modified.
func (m *Machine) Handle(s Session, ev protocol.Event, now time.Time) Result {
	if s.Mode == nil {
		s.Mode = Idle{}
	}
	r := Result{Session: s}

	switch ev.Kind {
	case protocol.KindBackPressed:
		m.back(&r)
	case protocol.KindWheelOpened:
		m.wheelOpened(&r)
	case protocol.KindWheelHover:
		m.wheelHover(&r, ev)
	case protocol.KindWheelSelectConfirm, protocol.KindDirectMedicationSelect:
		m.confirm(&r, ev, now)
	case protocol.KindNurseWheelOpened:
		m.nurseWheelOpened(&r)
	case protocol.KindNurseWheelHover:
		m.nurseWheelHover(&r, ev)
	case protocol.KindNurseWheelSelectConfirm:
		m.nurseWheelSelect(&r, ev)
	case protocol.KindNurseEditMedicationSelect:
		m.editMedicationSelect(&r, ev)
	case protocol.KindGestureModeToggled:
		m.gestureToggled(&r, ev)
	case protocol.KindGestureSwipe:
		m.swipe(&r, ev)
	case protocol.KindGestureTimeUpdate:
		m.timeUpdate(&r, ev)
	case protocol.KindGestureTimeFinal:
		m.timeFinal(&r, ev)
	default:
		r.Ignored = true
	}
	return r
}

func (m *Machine) back(r *Result) {
	r.DismissNotices = true
	switch r.Session.Mode.(type) {
	case NurseViewInfo, NurseEditMeds, NurseEditingTime:
		r.Session.Mode = newNurseMode()
		r.logf("Back to patient selection")
	case NurseMode:
		r.Session.Mode = Idle{}
		r.Session.Patient = m.cfg.DefaultPatient
		r.logf("Left nurse mode")
	default:
		r.Session.Mode = Idle{}
	}
}

func (m *Machine) wheelOpened(r *Result) {
	switch r.Session.Mode.(type) {
	case Idle, SelectingMedication:
	default:
		r.Ignored = true
		return
	}
	r.Session.Mode = SelectingMedication{Sector: presentation.NoSector}
	r.Commands = append(r.Commands, Command{Kind: CmdReloadSchedules})
	r.DismissNotices = true
	r.logf("Medication wheel opened")
}

func (m *Machine) wheelHover(r *Result, ev protocol.Event) {
	sel, ok := r.Session.Mode.(SelectingMedication)
	if !ok {
		r.Ignored = true
		return
	}
	sel.Sector = ev.Sector
	sel.Medication = ev.Medication
	r.Session.Mode = sel
}

func (m *Machine) confirm(r *Result, ev protocol.Event, now time.Time) {
	switch r.Session.Mode.(type) {
	case SelectingMedication:
	case Idle:
		if ev.Kind != protocol.KindDirectMedicationSelect {
			r.Ignored = true
			return
		}
	default:
		r.Ignored = true
		return
	}

	med := ev.Medication
	verdict := dosing.CanTake(med, r.Session.History, now)
	r.Dose = &DoseDecision{Medication: med, Verdict: verdict}
	r.Session.Mode = Idle{}
	r.DismissNotices = true

	if !verdict.Allowed {
		r.Notices = append(r.Notices, presentation.Notice{
			Kind:     presentation.NoticeWarning,
			Title:    "Too early for " + med,
			Message:  verdict.Reason,
			Duration: m.cfg.WarningDuration,
		})
		r.logf("Rejected %s: %s", med, verdict.Reason)
		return
	}

	rec := dosing.NewAdministration(med, now)
	r.Commands = append(r.Commands, Command{Kind: CmdRecordDose, Medication: med, At: now})

	msg := fmt.Sprintf("%s recorded at %s. Next dose due at %s.",
		med, now.Format(models.TimeOfDayLayout), rec.NextDoseAt.Format(models.TimeOfDayLayout))
	if next, ok := dosing.NextScheduledDoseFor(r.Session.Schedules, med, now); ok {
		msg += fmt.Sprintf(" Next scheduled dose: %s.", next.Format(models.TimeOfDayLayout))
	}
	r.Notices = append(r.Notices, presentation.Notice{
		Kind:     presentation.NoticeSuccess,
		Title:    med + " taken",
		Message:  msg,
		Duration: m.cfg.SuccessDuration,
	})
	r.logf("%s taken at %s", med, now.Format(models.TimeOfDayLayout))
}

func (m *Machine) nurseWheelOpened(r *Result) {
	switch mode := r.Session.Mode.(type) {
	case Idle:
	case NurseMode:
		if mode.WheelActive {
			r.Ignored = true
			return
		}
	default:
		r.Ignored = true
		return
	}
	r.Session.Mode = newNurseMode()
	r.DismissNotices = true
	r.logf("Nurse mode: select a patient")
}

func (m *Machine) nurseWheelHover(r *Result, ev protocol.Event) {
	switch mode := r.Session.Mode.(type) {
	case NurseMode:
		if !mode.WheelActive {
			r.Ignored = true
			return
		}
		mode.Sector, mode.Item = ev.Sector, ev.Item
		r.Session.Mode = mode
	case NurseEditMeds:
		if !mode.WheelActive {
			r.Ignored = true
			return
		}
		mode.Sector, mode.Hover = ev.Sector, ev.Item
		r.Session.Mode = mode
	default:
		r.Ignored = true
	}
}

func (m *Machine) nurseWheelSelect(r *Result, ev protocol.Event) {
	switch mode := r.Session.Mode.(type) {
	case NurseMode:
		if !mode.WheelActive {
			r.Ignored = true
			return
		}
		r.Session.Patient = ev.Item
		r.Session.Mode = NurseViewInfo{Patient: ev.Item}
		r.logf("Viewing %s", ev.Item)
	case NurseEditMeds:
		mode.Sector = ev.Sector
		mode.Editing = ev.Item
		r.Session.Mode = mode
		r.logf("Editing %s", ev.Item)
	default:
		r.Ignored = true
	}
}

func (m *Machine) editMedicationSelect(r *Result, ev protocol.Event) {
	switch mode := r.Session.Mode.(type) {
	case NurseMode, NurseViewInfo:
		r.Session.Mode = NurseEditMeds{WheelActive: true, Sector: ev.Sector, Hover: ev.Medication}
		r.logf("Select a medication to edit")
	case NurseEditMeds:
		mode.WheelActive = true
		mode.Sector, mode.Hover = ev.Sector, ev.Medication
		r.Session.Mode = mode
	default:
		r.Ignored = true
	}
}

func (m *Machine) gestureToggled(r *Result, ev protocol.Event) {
	switch mode := r.Session.Mode.(type) {
	case NurseEditMeds:
		if ev.Enabled {
			m.startGesture(r, mode)
			return
		}
		if mode.LastEdit == nil {
			r.Ignored = true
			return
		}
		if !mode.LastEdit.Saved {
			m.save(r, *mode.LastEdit)
		}
		mode.LastEdit = nil
		r.Session.Mode = mode
	case NurseEditingTime:
		if ev.Enabled {
			r.Ignored = true
			return
		}
		m.finishGesture(r, mode)
	default:
		r.Ignored = true
	}
}

func (m *Machine) startGesture(r *Result, mode NurseEditMeds) {
	target := mode.Editing
	if target == "" {
		target = mode.Hover
	}
	if target == "" {
		r.logf("Gesture mode ignored: no medication selected")
		return
	}

	candidate := m.editTime
	if s, ok := models.FindSchedule(r.Session.Schedules, target); ok {
		if times := s.SortedDoseTimes(); len(times) > 0 {
			candidate = times[0]
		}
	}
	r.Session.Mode = NurseEditingTime{Medication: target, Candidate: candidate, Editor: mode}
	r.logf("Adjusting %s from %s", target, candidate)
}

func (m *Machine) swipe(r *Result, ev protocol.Event) {
	mode, ok := r.Session.Mode.(NurseEditingTime)
	if !ok {
		r.Ignored = true
		return
	}
	switch ev.Direction {
	case protocol.SwipeLeft:
		mode.Candidate = mode.Candidate.Add(-m.cfg.SwipeStep)
	case protocol.SwipeRight:
		mode.Candidate = mode.Candidate.Add(m.cfg.SwipeStep)
	default:
		r.Ignored = true
		return
	}
	r.Session.Mode = mode
}

func (m *Machine) timeUpdate(r *Result, ev protocol.Event) {
	mode, ok := r.Session.Mode.(NurseEditingTime)
	if !ok {
		r.Ignored = true
		return
	}
	mode.Candidate = m.parseCandidate(r, ev.Time, mode.Candidate)
	r.Session.Mode = mode
}

func (m *Machine) timeFinal(r *Result, ev protocol.Event) {
	mode, ok := r.Session.Mode.(NurseEditingTime)
	if !ok {
		r.Ignored = true
		return
	}
	mode.Candidate = m.parseCandidate(r, ev.Time, mode.Candidate)
	m.finishGesture(r, mode)
}

// finishGesture persists the candidate and returns to the medication editor.
func (m *Machine) finishGesture(r *Result, mode NurseEditingTime) {
	edit := GestureEdit{Medication: mode.Medication, Time: mode.Candidate, Saved: true}
	editor := mode.Editor
	editor.Editing = mode.Medication
	editor.LastEdit = &edit
	r.Session.Mode = editor
	m.save(r, edit)
}

func (m *Machine) save(r *Result, edit GestureEdit) {
	times := dosing.EditedDoseTimes(edit.Time)
	r.Commands = append(r.Commands, Command{Kind: CmdSaveEditedTime, Medication: edit.Medication, Time: edit.Time})
	r.Notices = append(r.Notices, presentation.Notice{
		Kind:     presentation.NoticeSuccess,
		Title:    "Schedule updated",
		Message:  fmt.Sprintf("%s: %s", edit.Medication, joinTimes(times)),
		Duration: m.cfg.SuccessDuration,
	})
	r.DismissNotices = true
	r.logf("Saved %s dose times %s", edit.Medication, joinTimes(times))
}

func (m *Machine) parseCandidate(r *Result, raw string, current models.TimeOfDay) models.TimeOfDay {
	t, err := models.ParseTimeOfDay(raw)
	if err != nil {
		r.logf("Ignored unparseable time %q", raw)
		return current
	}
	return t
}

func (r *Result) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}
