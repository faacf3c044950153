package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hanriver/taxi-booking/internal/model"
)

// OrderRepo provides CRUD operations for orders and their booking
// legs.  Orders group together one leg (one-way) or two legs (round
// trip) purchased by a user in a single transaction.  Legs are stored
// in the bookings table with an explicit position column so the
// going/coming convention does not depend on storage iteration order.
// All timestamp fields are assumed to be stored in UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying sql.DB so handlers can open transactions
// spanning the order and schedule repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new order within the scope of an existing
// transaction.  It populates the generated ID and created_at on the
// provided record.  The caller must commit or rollback the
// transaction.  Status should be a valid model.OrderStatus value.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (user_id, status) VALUES (?, ?)`
	result, err := tx.ExecContext(ctx, q, o.UserID, o.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the row to populate the DB-assigned creation time.
	const sel = `SELECT created_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt)
}

// CreateBookingsBulkTx inserts multiple booking legs in a single
// statement.  The caller must supply the order ID and position in
// each record; positions encode the going/coming order of legs.
// Passing an empty slice has no effect and returns nil.
func (r *OrderRepo) CreateBookingsBulkTx(ctx context.Context, tx *sql.Tx, legs []model.Booking) error {
	if len(legs) == 0 {
		return nil
	}
	query := `INSERT INTO bookings (order_id, schedule_id, position, passenger_number, tax) VALUES `
	args := make([]interface{}, 0, len(legs)*5)
	for i, l := range legs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, l.OrderID, l.ScheduleID, l.Position, l.PassengerNumber, l.Tax)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// OrderView is the display model of an order reconstructed from its
// legs.  Going-leg fields come from the leg at position 0; coming-leg
// fields come from position 1 and are nil for one-way orders.  The
// JSON keys match the shape consumed by the booking front end.
type OrderView struct {
	OrderID               uint64  `json:"order_id"`
	RoundTrip             bool    `json:"round_trip"`
	DepartureLocation     string  `json:"departure_location"`
	DepartureLocationCode string  `json:"departure_location_code"`
	ArrivalLocation       string  `json:"arrival_location"`
	ArrivalLocationCode   string  `json:"arrival_location_code"`
	DepartureDate         string  `json:"departure_date"`
	ComebackDate          *string `json:"comeback_date"`
	PassengerNumber       int     `json:"passenger_number"`
	GoingTaxiCompanyName  string  `json:"going_taxi_company_name"`
	GoingTaxiCompanyLogo  string  `json:"going_taxi_company_logo"`
	GoingPrice            int64   `json:"going_price"`
	ComingTaxiCompanyName *string `json:"coming_taxi_company_name"`
	ComingTaxiCompanyLogo *string `json:"coming_taxi_company_logo"`
	ComingPrice           *int64  `json:"coming_price"`
}

// ListByUser returns all orders for the given user projected into
// OrderViews, newest-created first.  Legs are joined with their
// schedule, course, location and company rows in one query and
// regrouped per order by position.  An order with zero legs is a
// data-consistency fault and yields ErrNoBookings.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]OrderView, error) {
	const q = `SELECT o.id,
	                  b.position, b.passenger_number,
	                  dl.name, dl.location_code, al.name, al.location_code,
	                  DATE_FORMAT(s.date, '%m-%d'),
	                  tc.name, tc.logo_url, s.price
	           FROM orders o
	           LEFT JOIN bookings b ON b.order_id = o.id
	           LEFT JOIN schedules s ON s.id = b.schedule_id
	           LEFT JOIN courses c ON c.id = s.course_id
	           LEFT JOIN locations dl ON dl.id = c.departure_location_id
	           LEFT JOIN locations al ON al.id = c.arrival_location_id
	           LEFT JOIN taxi_companies tc ON tc.id = c.taxi_company_id
	           WHERE o.user_id = ?
	           ORDER BY o.created_at DESC, o.id DESC, b.position ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]OrderView, 0)
	index := make(map[uint64]int)
	legCount := make(map[uint64]int)
	for rows.Next() {
		var (
			orderID   uint64
			position  sql.NullInt64
			pax       sql.NullInt64
			depName   sql.NullString
			depCode   sql.NullString
			arrName   sql.NullString
			arrCode   sql.NullString
			date      sql.NullString
			company   sql.NullString
			logo      sql.NullString
			price     sql.NullInt64
		)
		if err := rows.Scan(
			&orderID, &position, &pax,
			&depName, &depCode, &arrName, &arrCode,
			&date, &company, &logo, &price,
		); err != nil {
			return nil, err
		}
		idx, seen := index[orderID]
		if !seen {
			index[orderID] = len(views)
			idx = len(views)
			views = append(views, OrderView{OrderID: orderID})
		}
		if !position.Valid {
			// LEFT JOIN produced no booking row for this order.
			continue
		}
		legCount[orderID]++
		v := &views[idx]
		switch position.Int64 {
		case 0:
			v.DepartureLocation = depName.String
			v.DepartureLocationCode = depCode.String
			v.ArrivalLocation = arrName.String
			v.ArrivalLocationCode = arrCode.String
			v.DepartureDate = date.String
			v.PassengerNumber = int(pax.Int64)
			v.GoingTaxiCompanyName = company.String
			v.GoingTaxiCompanyLogo = logo.String
			v.GoingPrice = price.Int64
		case 1:
			v.RoundTrip = true
			cd := date.String
			cn := company.String
			cl := logo.String
			cp := price.Int64
			v.ComebackDate = &cd
			v.ComingTaxiCompanyName = &cn
			v.ComingTaxiCompanyLogo = &cl
			v.ComingPrice = &cp
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, v := range views {
		if legCount[v.OrderID] == 0 {
			return nil, ErrNoBookings
		}
	}
	return views, nil
}

// OrderLeg carries the fields of one booking leg needed to reverse a
// reservation: which schedule it decremented and by how much.
type OrderLeg struct {
	BookingID       uint64
	ScheduleID      uint64
	Position        int
	PassengerNumber int
}

// GetLegsForUserTx loads an order's legs within a transaction,
// validating that the order belongs to the specified user.  The legs
// are returned in position order (going before coming) so seat
// restoration happens in the same sequence the legs were created.
// It returns ErrOrderNotFound when the order does not exist and
// ErrForbidden when the order belongs to a different user.
func (r *OrderRepo) GetLegsForUserTx(ctx context.Context, tx *sql.Tx, orderID, userID uint64) ([]OrderLeg, error) {
	const q = `SELECT user_id FROM orders WHERE id = ?`
	var ownerID uint64
	if err := tx.QueryRowContext(ctx, q, orderID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	const legQ = `SELECT id, schedule_id, position, passenger_number
	              FROM bookings WHERE order_id = ? ORDER BY position ASC`
	rows, err := tx.QueryContext(ctx, legQ, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var legs []OrderLeg
	for rows.Next() {
		var l OrderLeg
		if err := rows.Scan(&l.BookingID, &l.ScheduleID, &l.Position, &l.PassengerNumber); err != nil {
			return nil, err
		}
		legs = append(legs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return legs, nil
}

// DeleteTx removes an order and its booking legs inside the caller's
// transaction.  Bookings are deleted first so the operation does not
// depend on FK cascade behaviour.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	const delLegs = `DELETE FROM bookings WHERE order_id = ?`
	if _, err := tx.ExecContext(ctx, delLegs, orderID); err != nil {
		return err
	}
	const delOrder = `DELETE FROM orders WHERE id = ?`
	res, err := tx.ExecContext(ctx, delOrder, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
