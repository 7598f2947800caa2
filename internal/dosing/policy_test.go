package dosing

import (
	"testing"
	"time"

	"bedside_terminal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 1, h, m, 0, 0, time.UTC)
}

func tod(s string) models.TimeOfDay { return models.MustParseTimeOfDay(s) }

func TestNextScheduledDose(t *testing.T) {
	sched := models.MedicationSchedule{
		Name: "Aspirin", Enabled: true,
		DoseTimes: []models.TimeOfDay{tod("20:00"), tod("08:00")},
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before first dose", at(6, 0), at(8, 0)},
		{"exactly at a dose picks the next one", at(8, 0), at(20, 0)},
		{"between doses", at(9, 0), at(20, 0)},
		{"after last dose rolls to tomorrow", at(21, 0), at(8, 0).AddDate(0, 0, 1)},
		{"seconds past a dose time", at(20, 0).Add(30 * time.Second), at(8, 0).AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextScheduledDose(sched, tt.now)
			require.True(t, ok)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestNextScheduledDose_NoneWhenDisabledOrEmpty(t *testing.T) {
	_, ok := NextScheduledDose(models.MedicationSchedule{Name: "A", Enabled: false, DoseTimes: []models.TimeOfDay{tod("08:00")}}, at(7, 0))
	assert.False(t, ok)
	_, ok = NextScheduledDose(models.MedicationSchedule{Name: "A", Enabled: true}, at(7, 0))
	assert.False(t, ok)
	_, ok = NextScheduledDoseFor(nil, "Unknown", at(7, 0))
	assert.False(t, ok)
}

func TestNextScheduledDose_IsMinimumFutureCandidate(t *testing.T) {
	sched := models.MedicationSchedule{Enabled: true, DoseTimes: []models.TimeOfDay{tod("04:30"), tod("16:30"), tod("23:59")}}
	start := at(0, 0)
	for step := 0; step < 24*60; step += 7 {
		now := start.Add(time.Duration(step)*time.Minute + 13*time.Second)
		got, ok := NextScheduledDose(sched, now)
		require.True(t, ok)
		require.True(t, got.After(now), "not in the future at %v", now)

		var best time.Time
		candidates := []time.Time{tod("04:30").On(now.AddDate(0, 0, 1))}
		for _, d := range sched.DoseTimes {
			candidates = append(candidates, d.On(now))
		}
		for _, c := range candidates {
			if c.After(now) && (best.IsZero() || c.Before(best)) {
				best = c
			}
		}
		require.True(t, got.Equal(best), "at %v got %v want %v", now, got, best)
	}
}

func TestCanTake_FirstDoseAlwaysAllowed(t *testing.T) {
	history := []models.HistoryRecord{NewAdministration("Aspirin", at(8, 0))}
	v := CanTake("Paracetamol", history, at(9, 0))
	assert.True(t, v.Allowed)
	assert.True(t, v.LastTakenAt.IsZero())
}

func TestCanTake_ScenarioTakenThenTooEarly(t *testing.T) {
	first := NewAdministration("Paracetamol", at(9, 0))
	assert.True(t, first.NextDoseAt.Equal(at(21, 0)))
	assert.Equal(t, "09:00", first.ScheduledTime.String())
	assert.True(t, first.Taken)

	v := CanTake("Paracetamol", []models.HistoryRecord{first}, at(9, 5))
	require.False(t, v.Allowed)
	assert.True(t, v.EarliestAllowed.Equal(at(20, 50)))
	assert.Equal(t, 11*time.Hour+45*time.Minute, v.Wait)
	assert.Contains(t, v.Reason, "09:00")
	assert.Contains(t, v.Reason, "21:00")
	assert.Contains(t, v.Reason, "11h 45m")
}

func TestCanTake_GraceBoundary(t *testing.T) {
	history := []models.HistoryRecord{NewAdministration("Aspirin", at(8, 0))}
	assert.False(t, CanTake("Aspirin", history, at(19, 49)).Allowed)
	assert.True(t, CanTake("Aspirin", history, at(19, 50)).Allowed)
	assert.True(t, CanTake("Aspirin", history, at(23, 0)).Allowed)
}

func TestCanTake_UsesMostRecentTakenRecord(t *testing.T) {
	older := NewAdministration("Aspirin", at(8, 0).AddDate(0, 0, -1))
	newer := NewAdministration("Aspirin", at(8, 0))
	notTaken := models.HistoryRecord{Medication: "Aspirin", TakenAt: at(9, 0), NextDoseAt: at(23, 59), Taken: false}

	// Insertion order must not matter.
	v := CanTake("Aspirin", []models.HistoryRecord{newer, notTaken, older}, at(12, 0))
	require.False(t, v.Allowed)
	assert.True(t, v.LastTakenAt.Equal(newer.TakenAt))
}

func TestCanTake_Monotonic(t *testing.T) {
	history := []models.HistoryRecord{NewAdministration("Aspirin", at(8, 0))}
	prevAllowed := false
	for m := 0; m < 36*60; m += 3 {
		now := at(0, 0).Add(time.Duration(m) * time.Minute)
		allowed := CanTake("Aspirin", history, now).Allowed
		if prevAllowed {
			require.True(t, allowed, "allowed earlier but rejected at %v", now)
		}
		prevAllowed = allowed
	}
	assert.True(t, prevAllowed)
}

func TestCanTake_AcrossMidnight(t *testing.T) {
	history := []models.HistoryRecord{NewAdministration("Aspirin", at(22, 0))}
	v := CanTake("Aspirin", history, at(23, 0))
	require.False(t, v.Allowed)
	assert.Equal(t, 10*time.Hour+50*time.Minute, v.Wait)
	assert.True(t, CanTake("Aspirin", history, at(9, 50).AddDate(0, 0, 1)).Allowed)
}

func TestEditedDoseTimesAndApply(t *testing.T) {
	assert.Equal(t, []models.TimeOfDay{tod("02:00"), tod("14:00")}, EditedDoseTimes(tod("14:00")))
	assert.Equal(t, []models.TimeOfDay{tod("00:00"), tod("12:00")}, EditedDoseTimes(tod("12:00")))

	schedules := []models.MedicationSchedule{
		{Name: "Paracetamol", Enabled: true, DoseTimes: []models.TimeOfDay{tod("08:00"), tod("20:00")}},
		{Name: "Aspirin", Enabled: false, DoseTimes: []models.TimeOfDay{tod("09:00")}},
	}
	got := ApplyEditedTime(schedules, "Aspirin", tod("14:00"))
	require.Len(t, got, 2)
	assert.Equal(t, []models.TimeOfDay{tod("02:00"), tod("14:00")}, got[1].DoseTimes)
	assert.False(t, got[1].Enabled, "edit must not toggle the enabled flag")
	assert.Equal(t, []models.TimeOfDay{tod("09:00")}, schedules[1].DoseTimes, "input must not be mutated")

	added := ApplyEditedTime(schedules, "Metformin", tod("07:30"))
	require.Len(t, added, 3)
	assert.Equal(t, models.MedicationSchedule{Name: "Metformin", Enabled: true, DoseTimes: []models.TimeOfDay{tod("07:30"), tod("19:30")}}, added[2])
}

func TestFormatWait(t *testing.T) {
	assert.Equal(t, "11h 45m", FormatWait(11*time.Hour+45*time.Minute))
	assert.Equal(t, "1m", FormatWait(10*time.Second))
	assert.Equal(t, "2h", FormatWait(2*time.Hour))
	assert.Equal(t, "0m", FormatWait(0))
}
