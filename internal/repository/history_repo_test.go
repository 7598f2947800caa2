package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"bedside_terminal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newHistoryMock(t *testing.T) (*HistorySQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewHistorySQLite(db), mock
}

var historyCols = []string{"id", "medication", "taken_at", "scheduled_time", "taken", "next_dose_at"}

func TestHistoryAppendOne_GeneratesIDAndStoresUTC(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	loc := time.FixedZone("CET", 3600)
	taken := time.Date(2025, 3, 1, 9, 0, 0, 0, loc)

	mock.ExpectExec(regexp.QuoteMeta(insertHistorySQL)).
		WithArgs(sqlmock.AnyArg(), "Paracetamol", taken.UTC(), "09:00", true, taken.Add(12*time.Hour).UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendOne(ctx(t), models.HistoryRecord{
		Medication:    " Paracetamol ",
		TakenAt:       taken,
		ScheduledTime: models.MustParseTimeOfDay("09:00"),
		Taken:         true,
		NextDoseAt:    taken.Add(12 * time.Hour),
	})
	if err != nil {
		t.Fatalf("AppendOne: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestHistoryAppendOne_DBError(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	mock.ExpectExec("INSERT INTO medication_history").
		WillReturnError(errors.New("down"))

	err := repo.AppendOne(ctx(t), models.HistoryRecord{ID: "x", Medication: "Aspirin", Taken: true})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestHistoryLoadAll_ParsesRows(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	taken := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(historyCols).
		AddRow("1", "Paracetamol", taken, "09:00", true, taken.Add(12*time.Hour)).
		AddRow("2", "Aspirin", taken.Add(time.Hour), "10:00", true, taken.Add(13*time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(selectHistorySQL + " ORDER BY taken_at ASC")).
		WillReturnRows(rows)

	got, err := repo.LoadAll(ctx(t))
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if got[0].ScheduledTime.String() != "09:00" || !got[0].NextDoseAt.Equal(taken.Add(12*time.Hour)) {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestHistoryList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	query := selectHistorySQL + ` WHERE taken_at >= ? AND taken_at <= ? AND medication = ? ORDER BY taken_at ASC`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from, to, "Aspirin").
		WillReturnRows(sqlmock.NewRows(historyCols).
			AddRow("7", "Aspirin", from.Add(time.Hour), "01:00", true, from.Add(13*time.Hour)))

	got, err := repo.List(ctx(t), HistoryFilter{From: from, To: to, Medication: " Aspirin "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Medication != "Aspirin" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestHistoryList_ScanAndDecodeErrors(t *testing.T) {
	t.Parallel()

	t.Run("scan error", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectQuery("SELECT id, medication").
			WillReturnRows(sqlmock.NewRows(historyCols).AddRow("x", "Aspirin", 123, "09:00", true, nil))
		if _, err := repo.LoadAll(ctx(t)); err == nil {
			t.Fatalf("expected scan error, got nil")
		}
	})

	t.Run("bad scheduled time", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT id, medication").
			WillReturnRows(sqlmock.NewRows(historyCols).AddRow("x", "Aspirin", now, "nine", true, now))
		_, err := repo.LoadAll(ctx(t))
		if err == nil || !strings.Contains(err.Error(), "decode scheduled time") {
			t.Fatalf("expected decode error, got %v", err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectQuery("SELECT id, medication").WillReturnError(sql.ErrConnDone)
		if _, err := repo.LoadAll(ctx(t)); !errors.Is(err, sql.ErrConnDone) {
			t.Fatalf("expected wrapped ErrConnDone, got %v", err)
		}
	})
}

func TestHistoryClear(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	mock.ExpectExec(regexp.QuoteMeta(clearHistorySQL)).WillReturnResult(sqlmock.NewResult(0, 3))
	if err := repo.Clear(ctx(t)); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
