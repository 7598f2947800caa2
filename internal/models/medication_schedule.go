package models

import "sort"

// MedicationSchedule holds the daily dose times of one medication.
type MedicationSchedule struct {
	Name      string      `json:"name"`
	Enabled   bool        `json:"enabled"`
	DoseTimes []TimeOfDay `json:"dose_times"` // distinct; persisted order is irrelevant
}

// SortedDoseTimes returns the distinct dose times in ascending order.
func (s MedicationSchedule) SortedDoseTimes() []TimeOfDay {
	return SortTimes(s.DoseTimes)
}

// SortTimes returns a sorted, de-duplicated copy of times.
func SortTimes(times []TimeOfDay) []TimeOfDay {
	out := make([]TimeOfDay, 0, len(times))
	seen := make(map[TimeOfDay]struct{}, len(times))
	for _, t := range times {
		t = t.Normalize()
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FindSchedule returns the schedule named name, if present.
func FindSchedule(schedules []MedicationSchedule, name string) (MedicationSchedule, bool) {
	for _, s := range schedules {
		if s.Name == name {
			return s, true
		}
	}
	return MedicationSchedule{}, false
}

// CloneSchedules deep-copies schedules so callers can mutate the result freely.
func CloneSchedules(schedules []MedicationSchedule) []MedicationSchedule {
	out := make([]MedicationSchedule, len(schedules))
	for i, s := range schedules {
		s.DoseTimes = append([]TimeOfDay(nil), s.DoseTimes...)
		out[i] = s
	}
	return out
}
