package service

import (
	"context"
	"fmt"

	"bedside_terminal/internal/models"
	"bedside_terminal/internal/repository"
)

type ScheduleService struct {
	scheduleRepo repository.ScheduleRepo
}

func NewScheduleService(scheduleRepo repository.ScheduleRepo) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo}
}

// ListSchedules returns every schedule in stored order.
func (s *ScheduleService) ListSchedules(ctx context.Context) ([]models.MedicationSchedule, error) {
	list, err := s.scheduleRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return list, nil
}

// SeedSchedules stores seed when the store holds no schedules yet. It reports
// whether anything was written.
func (s *ScheduleService) SeedSchedules(ctx context.Context, seed []models.MedicationSchedule) (bool, error) {
	if len(seed) == 0 {
		return false, nil
	}
	existing, err := s.scheduleRepo.LoadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("seed schedules: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	normalized := models.CloneSchedules(seed)
	for i := range normalized {
		normalized[i].DoseTimes = models.SortTimes(normalized[i].DoseTimes)
	}
	if err := s.scheduleRepo.ReplaceAll(ctx, normalized); err != nil {
		return false, fmt.Errorf("seed schedules: %w", err)
	}
	return true, nil
}
