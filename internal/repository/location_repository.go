package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LocationRow is the public projection of a location including the
// number of courses arriving at it, used to build the station list
// description.
type LocationRow struct {
	ID          uint64  `json:"id"`
	StationCode string  `json:"stationCode"`
	StationName string  `json:"stationName"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
}

// LocationRepo encapsulates database operations for locations.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo constructs a LocationRepo given a DB handle.
func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// List returns all locations with their arriving-course counts.
func (r *LocationRepo) List(ctx context.Context) ([]LocationRow, error) {
	const q = `SELECT l.id, l.location_code, l.name, l.longitude, l.latitude, l.image_url,
	                  COUNT(c.id)
	           FROM locations l
	           LEFT JOIN courses c ON c.arrival_location_id = l.id
	           GROUP BY l.id, l.location_code, l.name, l.longitude, l.latitude, l.image_url
	           ORDER BY l.id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LocationRow, 0)
	for rows.Next() {
		var l LocationRow
		var courseCount int
		if err := rows.Scan(&l.ID, &l.StationCode, &l.StationName, &l.Longitude, &l.Latitude, &l.ImageURL, &courseCount); err != nil {
			return nil, err
		}
		l.Description = describeCourses(courseCount)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a single location.  It returns ErrLocationNotFound
// if there is no matching row.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*LocationRow, error) {
	const q = `SELECT l.id, l.location_code, l.name, l.longitude, l.latitude, l.image_url,
	                  (SELECT COUNT(*) FROM courses c WHERE c.arrival_location_id = l.id)
	           FROM locations l WHERE l.id = ?`
	var l LocationRow
	var courseCount int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.StationCode, &l.StationName, &l.Longitude, &l.Latitude, &l.ImageURL, &courseCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	l.Description = describeCourses(courseCount)
	return &l, nil
}

// describeCourses renders the station blurb shown under each
// location card.
func describeCourses(n int) string {
	return fmt.Sprintf("%d river courses arrive here", n)
}
