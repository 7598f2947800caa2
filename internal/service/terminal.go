package service

import (
	"context"
	"sync"
	"time"

	"bedside_terminal/internal/logger"
	"bedside_terminal/internal/metrics"
	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/protocol"
	"bedside_terminal/internal/session"
)

// TerminalOptions configures a TerminalService. Zero fields get defaults.
type TerminalOptions struct {
	Machine *session.Machine
	Sink    presentation.Sink
	Metrics *metrics.Metrics
	Log     *logger.Logger
	// Seed is written to an empty schedule store on Start.
	Seed []models.MedicationSchedule
	Now  func() time.Time
}

// Snapshot is a read-only copy of the terminal state for the HTTP surface.
type Snapshot struct {
	Mode      string                      `json:"mode"`
	Patient   string                      `json:"patient"`
	View      presentation.View           `json:"view"`
	Schedules []models.MedicationSchedule `json:"schedules"`
	Doses     int                         `json:"doses_recorded"`
}

// TerminalService consumes decoded events one at a time, runs them through the
// session machine and carries out the resulting commands. Only the goroutine
// running Run mutates the session; Snapshot may be called from anywhere.
type TerminalService struct {
	machine   *session.Machine
	dosing    Dosing
	schedules ScheduleBook
	history   HistoryLog
	sink      presentation.Sink
	notifier  *presentation.Notifier
	metrics   *metrics.Metrics
	log       *logger.Logger
	seed      []models.MedicationSchedule
	now       func() time.Time

	mu      sync.RWMutex
	session session.Session
}

func NewTerminalService(d Dosing, schedules ScheduleBook, history HistoryLog, opts TerminalOptions) *TerminalService {
	if opts.Machine == nil {
		opts.Machine = session.NewMachine(session.Config{})
	}
	if opts.Sink == nil {
		opts.Sink = presentation.NewLogSink(opts.Log)
	}
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TerminalService{
		machine:   opts.Machine,
		dosing:    d,
		schedules: schedules,
		history:   history,
		sink:      opts.Sink,
		notifier:  presentation.NewNotifier(opts.Sink),
		metrics:   opts.Metrics,
		log:       opts.Log.Named("terminal"),
		seed:      opts.Seed,
		now:       opts.Now,
		session:   opts.Machine.NewSession(),
	}
}

// Start seeds an empty schedule store, fills the session caches and renders
// the idle screen. A store failure is returned but leaves the terminal usable
// with whatever could be loaded.
func (t *TerminalService) Start(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if seeded, err := t.schedules.SeedSchedules(ctx, t.seed); err != nil {
		t.storeFailure("seed_schedules", err)
		keep(err)
	} else if seeded {
		t.log.Infow("schedules_seeded", "count", len(t.seed))
	}

	s := t.current()
	if list, err := t.schedules.ListSchedules(ctx); err != nil {
		t.storeFailure("load_schedules", err)
		keep(err)
	} else {
		s.Schedules = list
	}
	if list, err := t.history.LoadHistory(ctx); err != nil {
		t.storeFailure("load_history", err)
		keep(err)
	} else {
		s.History = list
	}

	t.set(s)
	t.sink.Render(session.View(s))
	t.log.Infow("terminal_started", "schedules", len(s.Schedules), "history", len(s.History))
	return firstErr
}

// Run handles events in arrival order until ctx is cancelled or events is closed.
func (t *TerminalService) Run(ctx context.Context, events <-chan protocol.Event) {
	for {
		select {
		case <-ctx.Done():
			t.notifier.Hide()
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.Handle(ctx, ev)
		}
	}
}

// Handle processes a single event.
func (t *TerminalService) Handle(ctx context.Context, ev protocol.Event) {
	prev := t.current()
	r := t.machine.Handle(prev, ev, t.now())
	if r.Ignored {
		t.log.Debugw("event_ignored", "kind", ev.Kind, "type", ev.Type, "mode", prev.ModeName())
		return
	}

	next := r.Session
	failed := false
	for _, cmd := range r.Commands {
		if err := t.execute(ctx, cmd, &next); err != nil {
			failed = true
		}
	}

	if r.Dose != nil {
		t.recordDecision(r.Dose, failed)
	}
	if next.ModeName() != prev.ModeName() {
		t.metrics.ModeTransition(string(next.ModeName()))
		t.log.Debugw("mode_changed", "from", prev.ModeName(), "to", next.ModeName())
	}
	t.set(next)

	for _, line := range r.Logs {
		t.sink.Log(line)
	}
	if r.DismissNotices {
		t.notifier.Hide()
	}
	for _, n := range r.Notices {
		if failed && n.Kind == presentation.NoticeSuccess {
			continue
		}
		t.notifier.Show(n)
	}
	if failed {
		t.sink.Log("Could not save the change; please try again")
		t.notifier.Show(presentation.Notice{
			Kind:     presentation.NoticeWarning,
			Title:    "Not saved",
			Message:  "The change could not be stored. Please try again.",
			Duration: t.machine.WarningDuration(),
		})
	}
	t.sink.Render(session.View(next))
}

// Snapshot returns a copy of the current session for readers outside the loop.
func (t *TerminalService) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.session.Clone()
	t.mu.RUnlock()

	doses := 0
	for _, rec := range s.History {
		if rec.Taken {
			doses++
		}
	}
	return Snapshot{
		Mode:      string(s.ModeName()),
		Patient:   s.Patient,
		View:      session.View(s),
		Schedules: s.Schedules,
		Doses:     doses,
	}
}

func (t *TerminalService) execute(ctx context.Context, cmd session.Command, s *session.Session) error {
	switch cmd.Kind {
	case session.CmdReloadSchedules:
		list, err := t.schedules.ListSchedules(ctx)
		if err != nil {
			// The cached copy stays usable; this is not a user-visible failure.
			t.storeFailure("load_schedules", err)
			return nil
		}
		s.Schedules = list

	case session.CmdRecordDose:
		rec, err := t.dosing.RecordAdministration(ctx, cmd.Medication, cmd.At)
		if err != nil {
			t.storeFailure("record_dose", err)
			return err
		}
		history := make([]models.HistoryRecord, 0, len(s.History)+1)
		s.History = append(append(history, s.History...), rec)
		t.log.Infow("dose_recorded", "medication", rec.Medication, "taken_at", rec.TakenAt, "next_dose_at", rec.NextDoseAt)

	case session.CmdSaveEditedTime:
		list, err := t.dosing.SaveEditedTime(ctx, cmd.Medication, cmd.Time)
		if err != nil {
			t.storeFailure("save_schedule", err)
			markUnsaved(s)
			return err
		}
		s.Schedules = list
		t.metrics.ScheduleEdited()
		t.log.Infow("schedule_saved", "medication", cmd.Medication, "time", cmd.Time.String())
	}
	return nil
}

// markUnsaved flags the editor's last gesture edit so closing gesture mode
// tries to persist it again.
func markUnsaved(s *session.Session) {
	editor, ok := s.Mode.(session.NurseEditMeds)
	if !ok || editor.LastEdit == nil {
		return
	}
	edit := *editor.LastEdit
	edit.Saved = false
	editor.LastEdit = &edit
	s.Mode = editor
}

func (t *TerminalService) recordDecision(d *session.DoseDecision, failed bool) {
	switch {
	case !d.Verdict.Allowed:
		t.metrics.DoseDecision("rejected")
		t.log.Infow("dose_rejected", "medication", d.Medication,
			"last_taken_at", d.Verdict.LastTakenAt, "next_due_at", d.Verdict.NextDueAt, "wait", d.Verdict.Wait.String())
	case failed:
		t.metrics.DoseDecision("failed")
	default:
		t.metrics.DoseDecision("allowed")
	}
}

func (t *TerminalService) storeFailure(op string, err error) {
	t.metrics.StoreError(op)
	t.log.Errorw("store_failed", "op", op, "err", err)
	t.sink.Log("Storage error: " + err.Error())
}

func (t *TerminalService) current() session.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session
}

func (t *TerminalService) set(s session.Session) {
	t.mu.Lock()
	t.session = s
	t.mu.Unlock()
}
