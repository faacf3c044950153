package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockTx(t *testing.T) (*ScheduleRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return NewScheduleRepo(db), mock, func() { db.Close() }
}

func TestReserveSeatsTx_DecrementsWhenEnoughSeats(t *testing.T) {
	repo, mock, done := newMockTx(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(3, uint64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.ReserveSeatsTx(context.Background(), tx, 7, 3); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveSeatsTx_RefusesWhenNotEnoughSeats(t *testing.T) {
	repo, mock, done := newMockTx(t)
	defer done()

	mock.ExpectBegin()
	// guard matches no row, probe finds the schedule
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(5, uint64(7), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schedules WHERE id = ").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = repo.ReserveSeatsTx(context.Background(), tx, 7, 5)
	if !errors.Is(err, ErrNoSeatsRemaining) {
		t.Fatalf("expected ErrNoSeatsRemaining, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveSeatsTx_MissingScheduleReported(t *testing.T) {
	repo, mock, done := newMockTx(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(2, uint64(99), 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schedules WHERE id = ").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = repo.ReserveSeatsTx(context.Background(), tx, 99, 2)
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRestoreSeatsTx_AddsSeatsBack(t *testing.T) {
	repo, mock, done := newMockTx(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE schedules SET seat_remain = seat_remain \+ `).
		WithArgs(4, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.RestoreSeatsTx(context.Background(), tx, 7, 4); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRestoreSeatsTx_MissingSchedule(t *testing.T) {
	repo, mock, done := newMockTx(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE schedules SET seat_remain = seat_remain \+ `).
		WithArgs(4, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = repo.RestoreSeatsTx(context.Background(), tx, 99, 4)
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeatRemaining(t *testing.T) {
	repo, mock, done := newMockTx(t)
	defer done()

	mock.ExpectQuery("SELECT seat_remain FROM schedules WHERE id = ").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_remain"}).AddRow(12))

	remain, err := repo.SeatRemaining(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if remain != 12 {
		t.Fatalf("seat_remain mismatch: got %d want 12", remain)
	}

	mock.ExpectQuery("SELECT seat_remain FROM schedules WHERE id = ").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_remain"}))
	if _, err := repo.SeatRemaining(context.Background(), 99); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
