package service

import (
	"context"
	"sync"

	"bedside_terminal/internal/models"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/repository"
)

// memScheduleRepo is an in-memory repository.ScheduleRepo.
type memScheduleRepo struct {
	list       []models.MedicationSchedule
	loadErr    error
	replaceErr error
	loads      int
	replaces   int
}

func (f *memScheduleRepo) LoadAll(ctx context.Context) ([]models.MedicationSchedule, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return models.CloneSchedules(f.list), nil
}

func (f *memScheduleRepo) ReplaceAll(ctx context.Context, list []models.MedicationSchedule) error {
	f.replaces++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.list = models.CloneSchedules(list)
	return nil
}

// memHistoryRepo is an in-memory repository.HistoryRepo.
type memHistoryRepo struct {
	records   []models.HistoryRecord
	appendErr error
	listErr   error
	clearErr  error
	gotFilter repository.HistoryFilter
}

func (f *memHistoryRepo) LoadAll(ctx context.Context) ([]models.HistoryRecord, error) {
	return f.List(ctx, repository.HistoryFilter{})
}

func (f *memHistoryRepo) AppendOne(ctx context.Context, rec models.HistoryRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *memHistoryRepo) List(ctx context.Context, filter repository.HistoryFilter) ([]models.HistoryRecord, error) {
	f.gotFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.HistoryRecord(nil), f.records...), nil
}

func (f *memHistoryRepo) Clear(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.records = nil
	return nil
}

// recordingSink captures presentation output.
type recordingSink struct {
	mu      sync.Mutex
	logs    []string
	views   []presentation.View
	notices []presentation.Notice
	hides   int
}

func (r *recordingSink) Status(bool, string) {}

func (r *recordingSink) Log(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, line)
}

func (r *recordingSink) Render(v presentation.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recordingSink) ShowNotice(n presentation.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingSink) HideNotice() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
}

func (r *recordingSink) lastView() presentation.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return presentation.View{}
	}
	return r.views[len(r.views)-1]
}

func (r *recordingSink) lastNotice() (presentation.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return presentation.Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
