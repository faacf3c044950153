package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ScheduleSearchQuery defines filters & pagination for searching ride
// schedules.  Departure and arrival match location codes or names;
// Date filters on the schedule's calendar date (YYYY-MM-DD).
type ScheduleSearchQuery struct {
	Departure string
	Arrival   string
	Date      string
	Page      int
	PageSize  int
}

// SearchAvailable returns schedules matching the query together with
// the total match count.  Only runs with at least one remaining seat
// are returned, ordered by date then departure time.
func (r *ScheduleRepo) SearchAvailable(ctx context.Context, q ScheduleSearchQuery) ([]ScheduleRow, int64, error) {
	where := []string{"s.seat_remain > 0"}
	args := []any{}

	if q.Departure != "" {
		where = append(where, "(dl.location_code = ? OR LOWER(dl.name) LIKE ?)")
		args = append(args, q.Departure, "%"+strings.ToLower(q.Departure)+"%")
	}
	if q.Arrival != "" {
		where = append(where, "(al.location_code = ? OR LOWER(al.name) LIKE ?)")
		args = append(args, q.Arrival, "%"+strings.ToLower(q.Arrival)+"%")
	}
	if q.Date != "" {
		where = append(where, "DATE(s.date) = ?")
		args = append(args, q.Date)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM schedules s
		JOIN courses c ON c.id = s.course_id
		JOIN locations dl ON dl.id = c.departure_location_id
		JOIN locations al ON al.id = c.arrival_location_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			s.id,
			s.course_id,
			s.price,
			s.seat_remain,
			DATE_FORMAT(s.date, '%Y-%m-%d') AS date,
			dl.name, dl.location_code,
			al.name, al.location_code,
			DATE_FORMAT(c.departure_time, '%H:%i') AS departure_time,
			DATE_FORMAT(c.arrival_time, '%H:%i') AS arrival_time,
			tc.name, tc.logo_url,
			st.name
		FROM schedules s
		JOIN courses c ON c.id = s.course_id
		JOIN locations dl ON dl.id = c.departure_location_id
		JOIN locations al ON al.id = c.arrival_location_id
		JOIN taxi_companies tc ON tc.id = c.taxi_company_id
		LEFT JOIN seat_types st ON st.id = s.seat_type_id
		WHERE ` + cond + `
		ORDER BY s.date ASC, c.departure_time ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ScheduleRow, 0, limit)
	for rows.Next() {
		var d ScheduleRow
		var seatType sql.NullString
		if err := rows.Scan(
			&d.ID,
			&d.CourseID,
			&d.Price,
			&d.SeatRemain,
			&d.Date,
			&d.DepartureName, &d.DepartureCode,
			&d.ArrivalName, &d.ArrivalCode,
			&d.DepartureTime,
			&d.ArrivalTime,
			&d.TaxiCompanyName, &d.TaxiCompanyLogo,
			&seatType,
		); err != nil {
			return nil, 0, err
		}
		if seatType.Valid {
			st := seatType.String
			d.SeatTypeName = &st
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
