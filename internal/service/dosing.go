package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bedside_terminal/internal/dosing"
	"bedside_terminal/internal/models"
	"bedside_terminal/internal/repository"

	"github.com/google/uuid"
)

// ErrEmptyMedication is returned when an operation is given a blank name.
var ErrEmptyMedication = errors.New("medication name is required")

type DosingService struct {
	scheduleRepo repository.ScheduleRepo
	historyRepo  repository.HistoryRepo
}

func NewDosingService(scheduleRepo repository.ScheduleRepo, historyRepo repository.HistoryRepo) *DosingService {
	return &DosingService{scheduleRepo: scheduleRepo, historyRepo: historyRepo}
}

// RecordAdministration appends a taken record for medication at now and
// returns it. The caller is expected to have consulted dosing.CanTake.
func (s *DosingService) RecordAdministration(ctx context.Context, medication string, now time.Time) (models.HistoryRecord, error) {
	medication = strings.TrimSpace(medication)
	if medication == "" {
		return models.HistoryRecord{}, ErrEmptyMedication
	}

	rec := dosing.NewAdministration(medication, now)
	rec.ID = uuid.NewString()
	if err := s.historyRepo.AppendOne(ctx, rec); err != nil {
		return models.HistoryRecord{}, fmt.Errorf("record administration of %s: %w", medication, err)
	}
	return rec, nil
}

// SaveEditedTime replaces medication's dose times with chosen and chosen+12h
// and stores the full schedule list. It returns the list as stored.
func (s *DosingService) SaveEditedTime(ctx context.Context, medication string, chosen models.TimeOfDay) ([]models.MedicationSchedule, error) {
	medication = strings.TrimSpace(medication)
	if medication == "" {
		return nil, ErrEmptyMedication
	}

	current, err := s.scheduleRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("save edited time for %s: %w", medication, err)
	}
	updated := dosing.ApplyEditedTime(current, medication, chosen.Normalize())
	if err := s.scheduleRepo.ReplaceAll(ctx, updated); err != nil {
		return nil, fmt.Errorf("save edited time for %s: %w", medication, err)
	}
	return updated, nil
}
