package repository

import (
	"context"
	"database/sql"
	"errors"
)

// DriverRow is the public projection of a taxi driver including the
// aggregates shown in the driver list: review count and average
// rating.
type DriverRow struct {
	ID                 uint64  `json:"id"`
	Name               string  `json:"name"`
	TaxiCompanyName    string  `json:"taxi_company_name"`
	TaxiCompanyLogoURL string  `json:"taxi_company_logo_url"`
	ProfileURL         string  `json:"profile_url"`
	ReviewCount        int     `json:"review_count"`
	AverageRating      float64 `json:"average_rating"`
	Introduction       string  `json:"introduction"`
}

// DriverRepo encapsulates database operations for taxi drivers.
type DriverRepo struct {
	db *sql.DB
}

// NewDriverRepo constructs a DriverRepo given a DB handle.
func NewDriverRepo(db *sql.DB) *DriverRepo {
	return &DriverRepo{db: db}
}

// Sort keys accepted by List.
const (
	DriverSortReview = "review"
	DriverSortRating = "rating"
)

// List returns all drivers with company info and review aggregates.
// sort selects the ordering: "rating" sorts by average rating
// descending, anything else (including empty) by review count
// descending.
func (r *DriverRepo) List(ctx context.Context, sort string) ([]DriverRow, error) {
	order := "review_count DESC"
	if sort == DriverSortRating {
		order = "average_rating DESC"
	}
	q := `SELECT d.id, d.name, tc.name, tc.logo_url, d.profile_url, d.introduction,
	             COUNT(dr.id) AS review_count,
	             COALESCE(AVG(dr.rating), 0) AS average_rating
	      FROM taxi_drivers d
	      JOIN taxi_companies tc ON tc.id = d.taxi_company_id
	      LEFT JOIN driver_reviews dr ON dr.taxi_driver_id = d.id
	      GROUP BY d.id, d.name, tc.name, tc.logo_url, d.profile_url, d.introduction
	      ORDER BY ` + order
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DriverRow, 0)
	for rows.Next() {
		var d DriverRow
		if err := rows.Scan(&d.ID, &d.Name, &d.TaxiCompanyName, &d.TaxiCompanyLogoURL, &d.ProfileURL, &d.Introduction, &d.ReviewCount, &d.AverageRating); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a single driver with review aggregates.  It
// returns ErrDriverNotFound if there is no matching row.
func (r *DriverRepo) GetByID(ctx context.Context, id uint64) (*DriverRow, error) {
	const q = `SELECT d.id, d.name, tc.name, tc.logo_url, d.profile_url, d.introduction,
	                  COUNT(dr.id) AS review_count,
	                  COALESCE(AVG(dr.rating), 0) AS average_rating
	           FROM taxi_drivers d
	           JOIN taxi_companies tc ON tc.id = d.taxi_company_id
	           LEFT JOIN driver_reviews dr ON dr.taxi_driver_id = d.id
	           WHERE d.id = ?
	           GROUP BY d.id, d.name, tc.name, tc.logo_url, d.profile_url, d.introduction`
	var d DriverRow
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.Name, &d.TaxiCompanyName, &d.TaxiCompanyLogoURL, &d.ProfileURL, &d.Introduction, &d.ReviewCount, &d.AverageRating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Exists reports whether a driver row with the given id exists.
func (r *DriverRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	const q = `SELECT id FROM taxi_drivers WHERE id = ?`
	var got uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
