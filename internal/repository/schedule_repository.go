// Package repository contains data access logic for schedule operations.
// This file implements the seat ledger: per-schedule remaining-seat
// counters that are the single source of truth for availability.
// Counters are only ever moved through conditional, transactional
// updates so that concurrent bookings can never oversell a run.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ScheduleRow mirrors the schedules table joined with its course and
// company data as needed by availability checks and search results.
type ScheduleRow struct {
	ID              uint64  `json:"id"`
	CourseID        uint64  `json:"course_id"`
	Price           int64   `json:"price"`
	SeatRemain      int     `json:"seat_remain"`
	Date            string  `json:"date"`
	DepartureName   string  `json:"departure_location"`
	DepartureCode   string  `json:"departure_location_code"`
	ArrivalName     string  `json:"arrival_location"`
	ArrivalCode     string  `json:"arrival_location_code"`
	DepartureTime   string  `json:"departure_time"`
	ArrivalTime     string  `json:"arrival_time"`
	TaxiCompanyName string  `json:"taxi_company_name"`
	TaxiCompanyLogo string  `json:"taxi_company_logo"`
	SeatTypeName    *string `json:"seat_type,omitempty"`
}

// ScheduleRepo manages persistence for schedules and their seat
// counters.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *ScheduleRepo) DB() *sql.DB {
	return r.db
}

// SeatRemaining returns the current remaining seat count for a
// schedule.  It returns ErrScheduleNotFound when the schedule does
// not exist.
func (r *ScheduleRepo) SeatRemaining(ctx context.Context, scheduleID uint64) (int, error) {
	const q = `SELECT seat_remain FROM schedules WHERE id = ?`
	var remain int
	err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&remain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrScheduleNotFound
		}
		return 0, err
	}
	return remain, nil
}

// ReserveSeatsTx atomically takes n seats from a schedule inside the
// caller's transaction.  The availability check and the decrement are
// a single conditional UPDATE so two concurrent reservations cannot
// both pass a stale read and oversell the run.  When the UPDATE
// matches no row, a follow-up probe distinguishes a missing schedule
// (ErrScheduleNotFound) from insufficient seats (ErrNoSeatsRemaining);
// in both cases the ledger is untouched and the caller must roll back.
func (r *ScheduleRepo) ReserveSeatsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, n int) error {
	const q = `UPDATE schedules SET seat_remain = seat_remain - ? WHERE id = ? AND seat_remain >= ?`
	res, err := tx.ExecContext(ctx, q, n, scheduleID, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	// The guard rejected the decrement. Probe for existence so the
	// caller can tell invalid_id from no_seat_remain.
	const probe = `SELECT id FROM schedules WHERE id = ?`
	var id uint64
	if err := tx.QueryRowContext(ctx, probe, scheduleID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrScheduleNotFound
		}
		return err
	}
	return ErrNoSeatsRemaining
}

// RestoreSeatsTx returns n seats to a schedule inside the caller's
// transaction.  It is the inverse of ReserveSeatsTx and is used when
// an order is cancelled.  ErrScheduleNotFound is returned when the
// schedule row no longer exists.
func (r *ScheduleRepo) RestoreSeatsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, n int) error {
	const q = `UPDATE schedules SET seat_remain = seat_remain + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, n, scheduleID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// GetByID retrieves a schedule row with its course, location and
// company details.  It returns ErrScheduleNotFound if there is no
// matching row.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*ScheduleRow, error) {
	const q = `SELECT s.id, s.course_id, s.price, s.seat_remain, s.date,
	                  dl.name, dl.location_code, al.name, al.location_code,
	                  c.departure_time, c.arrival_time,
	                  tc.name, tc.logo_url, st.name
	           FROM schedules s
	           JOIN courses c ON c.id = s.course_id
	           JOIN locations dl ON dl.id = c.departure_location_id
	           JOIN locations al ON al.id = c.arrival_location_id
	           JOIN taxi_companies tc ON tc.id = c.taxi_company_id
	           LEFT JOIN seat_types st ON st.id = s.seat_type_id
	           WHERE s.id = ?`
	var row ScheduleRow
	var date time.Time
	var depTime, arrTime time.Time
	var seatType sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&row.ID, &row.CourseID, &row.Price, &row.SeatRemain, &date,
		&row.DepartureName, &row.DepartureCode, &row.ArrivalName, &row.ArrivalCode,
		&depTime, &arrTime,
		&row.TaxiCompanyName, &row.TaxiCompanyLogo, &seatType,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	row.Date = date.UTC().Format("2006-01-02")
	row.DepartureTime = depTime.UTC().Format("15:04")
	row.ArrivalTime = arrTime.UTC().Format("15:04")
	if seatType.Valid {
		st := seatType.String
		row.SeatTypeName = &st
	}
	return &row, nil
}
