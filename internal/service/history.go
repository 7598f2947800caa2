package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bedside_terminal/internal/models"
	"bedside_terminal/internal/repository"
)

type HistoryService struct {
	historyRepo repository.HistoryRepo
}

func NewHistoryService(historyRepo repository.HistoryRepo) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// ErrInvalidTimeRange is returned when From is after To.
var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeFilter prepares query parameters and validates the time range.
func normalizeFilter(f HistoryFilter) (repository.HistoryFilter, error) {
	out := repository.HistoryFilter{
		From:       normalizeToUTC(f.From),
		To:         normalizeToUTC(f.To),
		Medication: strings.TrimSpace(f.Medication),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return repository.HistoryFilter{}, ErrInvalidTimeRange
	}
	return out, nil
}

func (s *HistoryService) LoadHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	list, err := s.historyRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return list, nil
}

func (s *HistoryService) ListHistory(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error) {
	rf, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	list, err := s.historyRepo.List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return list, nil
}

// ClearHistory removes every record. It exists for the admin surface only;
// the terminal itself never deletes history.
func (s *HistoryService) ClearHistory(ctx context.Context) error {
	if err := s.historyRepo.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
