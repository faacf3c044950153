package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/hanriver/taxi-booking/internal/repository"
)

func newOrderTestHandler(t *testing.T) (*OrderHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	// keep the best-effort event publish from touching a real broker
	t.Setenv("RABBITMQ_URL", "amqp://127.0.0.1:1/")
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	h := NewOrderHandler(repository.NewScheduleRepo(db), repository.NewOrderRepo(db))
	return h, mock, func() { db.Close() }
}

func newOrderContext(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func TestCreateOrder_RoundTripBooksBothLegs(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(2, uint64(7), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(2, uint64(8), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(uint64(10), "BOOKED").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT created_at FROM orders WHERE id = ").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(
			uint64(42), uint64(7), 0, 2, int64(8800),
			uint64(42), uint64(8), 1, 2, int64(8800),
		).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	c, rec := newOrderContext(t, http.MethodPost, "/v1/orders",
		`{"passenger_number":2,"going_schedule_id":7,"coming_schedule_id":8}`, 10)
	if err := h.CreateOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrder_SameScheduleBothLegsDecrementsOnce(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	// going and coming on schedule 7 with 2 passengers: the ledger must
	// supply 4 seats in a single conditional decrement
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(4, uint64(7), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(uint64(10), "BOOKED").
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectQuery("SELECT created_at FROM orders WHERE id = ").
		WithArgs(uint64(43)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(
			uint64(43), uint64(7), 0, 2, int64(8800),
			uint64(43), uint64(7), 1, 2, int64(8800),
		).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	c, rec := newOrderContext(t, http.MethodPost, "/v1/orders",
		`{"passenger_number":2,"going_schedule_id":7,"coming_schedule_id":7}`, 10)
	if err := h.CreateOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrder_SecondLegSoldOutRollsBackFirst(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(3, uint64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(3, uint64(8), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schedules WHERE id = ").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectRollback()

	c, rec := newOrderContext(t, http.MethodPost, "/v1/orders",
		`{"passenger_number":3,"going_schedule_id":7,"coming_schedule_id":8}`, 10)
	if err := h.CreateOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "no_seat_remain") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrder_UnknownScheduleIsInvalidID(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET seat_remain = seat_remain - ").
		WithArgs(1, uint64(99), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schedules WHERE id = ").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	c, rec := newOrderContext(t, http.MethodPost, "/v1/orders",
		`{"passenger_number":1,"going_schedule_id":99}`, 10)
	if err := h.CreateOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_id") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateOrder_MissingFieldsAreKeyError(t *testing.T) {
	h, _, done := newOrderTestHandler(t)
	defer done()

	cases := []string{
		`{}`,
		`{"passenger_number":2}`,
		`{"going_schedule_id":7}`,
		`{"passenger_number":0,"going_schedule_id":7}`,
		`{"passenger_number":-1,"going_schedule_id":7}`,
	}
	for _, body := range cases {
		c, rec := newOrderContext(t, http.MethodPost, "/v1/orders", body, 10)
		if err := h.CreateOrder(c); err != nil {
			t.Fatalf("handler error for %s: %v", body, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status for %s: got %d want 400", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "key_error") {
			t.Fatalf("unexpected body for %s: %s", body, rec.Body.String())
		}
	}
}

func TestListOrders_DataFaultIsDataError(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "position", "passenger_number",
		"dep_name", "dep_code", "arr_name", "arr_code",
		"date", "company", "logo", "price",
	}).AddRow(44, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery("FROM orders o").
		WithArgs(uint64(10)).
		WillReturnRows(rows)

	c, rec := newOrderContext(t, http.MethodGet, "/v1/orders", "", 10)
	if err := h.ListOrders(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "data_error") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCancelOrder_RestoresSeatsAndDeletes(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM orders WHERE id = ").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(10))
	mock.ExpectQuery("FROM bookings WHERE order_id = ").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "schedule_id", "position", "passenger_number"}).
			AddRow(1, 7, 0, 2).
			AddRow(2, 8, 1, 2))
	mock.ExpectExec(`UPDATE schedules SET seat_remain = seat_remain \+ `).
		WithArgs(2, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE schedules SET seat_remain = seat_remain \+ `).
		WithArgs(2, uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookings WHERE order_id = ").
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM orders WHERE id = ").
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newOrderContext(t, http.MethodDelete, "/v1/orders/42", "", 10)
	c.SetParamNames("id")
	c.SetParamValues("42")
	if err := h.CancelOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelOrder_OtherUsersOrderIsForbidden(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM orders WHERE id = ").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(11))
	mock.ExpectRollback()

	c, rec := newOrderContext(t, http.MethodDelete, "/v1/orders/42", "", 10)
	c.SetParamNames("id")
	c.SetParamValues("42")
	if err := h.CancelOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d want 403, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_user") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCancelOrder_UnknownOrderIsInvalidID(t *testing.T) {
	h, mock, done := newOrderTestHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM orders WHERE id = ").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	c, rec := newOrderContext(t, http.MethodDelete, "/v1/orders/99", "", 10)
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.CancelOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_id") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	// a non-numeric path parameter never reaches the database
	c2, rec2 := newOrderContext(t, http.MethodDelete, "/v1/orders/abc", "", 10)
	c2.SetParamNames("id")
	c2.SetParamValues("abc")
	if err := h.CancelOrder(c2); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec2.Code)
	}
}
