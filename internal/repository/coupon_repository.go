package repository

import (
	"context"
	"database/sql"
)

// CouponRow is the banner projection of a coupon.
type CouponRow struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// CouponRepo encapsulates database operations for coupons.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo constructs a CouponRepo given a DB handle.
func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// List returns all coupons in banner order.
func (r *CouponRepo) List(ctx context.Context) ([]CouponRow, error) {
	const q = `SELECT id, name, image_url FROM coupons ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CouponRow, 0)
	for rows.Next() {
		var c CouponRow
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
