package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hanriver/taxi-booking/internal/model"
)

// ReviewRow is a driver review joined with its author's name.
type ReviewRow struct {
	ID       uint64 `json:"id"`
	DriverID uint64 `json:"driver_id"`
	UserID   uint64 `json:"user_id"`
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Review   string `json:"review"`
}

// ReviewRepo encapsulates database operations for driver reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo given a DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a review for a driver and returns the generated ID.
func (r *ReviewRepo) Create(ctx context.Context, rv model.DriverReview) (uint64, error) {
	const q = `INSERT INTO driver_reviews (taxi_driver_id, user_id, rating, review) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rv.TaxiDriverID, rv.UserID, rv.Rating, rv.Review)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByDriver returns all reviews for a driver, newest first.
func (r *ReviewRepo) ListByDriver(ctx context.Context, driverID uint64) ([]ReviewRow, error) {
	const q = `SELECT dr.id, dr.taxi_driver_id, dr.user_id, u.name, dr.rating, dr.review
	           FROM driver_reviews dr
	           JOIN users u ON u.id = dr.user_id
	           WHERE dr.taxi_driver_id = ?
	           ORDER BY dr.id DESC`
	rows, err := r.db.QueryContext(ctx, q, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReviewRow, 0)
	for rows.Next() {
		var rv ReviewRow
		if err := rows.Scan(&rv.ID, &rv.DriverID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Review); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a review owned by the given user.  It returns
// ErrReviewNotFound when the review does not exist and ErrForbidden
// when it belongs to a different user.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID, userID uint64) error {
	const q = `SELECT user_id FROM driver_reviews WHERE id = ?`
	var ownerID uint64
	if err := r.db.QueryRowContext(ctx, q, reviewID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	const del = `DELETE FROM driver_reviews WHERE id = ?`
	_, err := r.db.ExecContext(ctx, del, reviewID)
	return err
}
