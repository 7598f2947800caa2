// Package dosing implements the medication safety policy. Everything here is
// a pure function of its inputs; persistence lives in the service layer.
package dosing

import (
	"fmt"
	"time"

	"bedside_terminal/internal/models"
)

const (
	// GracePeriod is how long before the bookkeeping next dose a confirmation
	// becomes acceptable.
	GracePeriod = 10 * time.Minute
	// BookkeepingInterval is the fixed spacing recorded after each administration,
	// independent of the configured schedule.
	BookkeepingInterval = 12 * time.Hour
	// PairOffset separates the two dose times produced by an edit.
	PairOffset = 12 * time.Hour
)

// NextScheduledDose returns the earliest enabled dose strictly after now:
// a remaining dose today, otherwise the first dose tomorrow. ok is false when
// the schedule is disabled or has no dose times.
func NextScheduledDose(s models.MedicationSchedule, now time.Time) (next time.Time, ok bool) {
	if !s.Enabled || len(s.DoseTimes) == 0 {
		return time.Time{}, false
	}
	times := s.SortedDoseTimes()
	for _, t := range times {
		if at := t.On(now); at.After(now) {
			return at, true
		}
	}
	return times[0].On(now.AddDate(0, 0, 1)), true
}

// NextScheduledDoseFor looks the medication up in schedules first.
func NextScheduledDoseFor(schedules []models.MedicationSchedule, medication string, now time.Time) (time.Time, bool) {
	s, found := models.FindSchedule(schedules, medication)
	if !found {
		return time.Time{}, false
	}
	return NextScheduledDose(s, now)
}

// Verdict is the outcome of CanTake.
type Verdict struct {
	Allowed bool
	// Set when the medication has been taken before.
	LastTakenAt time.Time
	NextDueAt   time.Time
	// EarliestAllowed is NextDueAt minus the grace period.
	EarliestAllowed time.Time
	// Wait is the remaining time until EarliestAllowed; zero when allowed.
	Wait   time.Duration
	Reason string
}

// LastTaken returns the most recent record of medication with Taken set.
func LastTaken(history []models.HistoryRecord, medication string) (models.HistoryRecord, bool) {
	var (
		last  models.HistoryRecord
		found bool
	)
	for _, rec := range history {
		if rec.Medication != medication || !rec.Taken {
			continue
		}
		if !found || rec.TakenAt.After(last.TakenAt) {
			last, found = rec, true
		}
	}
	return last, found
}

// CanTake decides whether a confirmation of medication at now is permitted.
// The first dose ever is always allowed; otherwise now must not be before the
// last record's next dose time minus GracePeriod.
func CanTake(medication string, history []models.HistoryRecord, now time.Time) Verdict {
	last, found := LastTaken(history, medication)
	if !found {
		return Verdict{Allowed: true}
	}

	v := Verdict{
		LastTakenAt:     last.TakenAt,
		NextDueAt:       last.NextDoseAt,
		EarliestAllowed: last.NextDoseAt.Add(-GracePeriod),
	}
	if now.Before(v.EarliestAllowed) {
		v.Wait = v.EarliestAllowed.Sub(now)
		v.Reason = fmt.Sprintf("%s was last taken at %s. Next dose is due at %s. Please wait %s.",
			medication,
			last.TakenAt.In(now.Location()).Format(models.TimeOfDayLayout),
			last.NextDoseAt.In(now.Location()).Format(models.TimeOfDayLayout),
			FormatWait(v.Wait))
		return v
	}
	v.Allowed = true
	return v
}

// NewAdministration builds the history record for a dose taken at now.
func NewAdministration(medication string, now time.Time) models.HistoryRecord {
	return models.HistoryRecord{
		Medication:    medication,
		TakenAt:       now,
		ScheduledTime: models.TimeOfDayOf(now),
		Taken:         true,
		NextDoseAt:    now.Add(BookkeepingInterval),
	}
}

// EditedDoseTimes expands a chosen time into the stored pair: chosen and
// chosen+12h, wrapped at midnight, ascending.
func EditedDoseTimes(chosen models.TimeOfDay) []models.TimeOfDay {
	return models.SortTimes([]models.TimeOfDay{chosen, chosen.Add(PairOffset)})
}

// ApplyEditedTime returns a copy of schedules in which medication's dose times
// are replaced by EditedDoseTimes(chosen). An unknown medication is appended
// as a new enabled schedule.
func ApplyEditedTime(schedules []models.MedicationSchedule, medication string, chosen models.TimeOfDay) []models.MedicationSchedule {
	out := models.CloneSchedules(schedules)
	times := EditedDoseTimes(chosen)
	for i := range out {
		if out[i].Name == medication {
			out[i].DoseTimes = times
			return out
		}
	}
	return append(out, models.MedicationSchedule{Name: medication, Enabled: true, DoseTimes: times})
}

// FormatWait renders d as "11h 45m", rounding up to the whole minute.
func FormatWait(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	minutes := int((d + time.Minute - 1) / time.Minute)
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
