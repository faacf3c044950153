package handler

import (
	"errors"   // for errors.Is comparisons against repository sentinels
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // event timestamps

	"github.com/hanriver/taxi-booking/internal/model"      // order and booking records
	"github.com/hanriver/taxi-booking/internal/queue"      // order lifecycle event payloads
	"github.com/hanriver/taxi-booking/internal/repository" // repository layer
	queue_publisher "github.com/hanriver/taxi-booking/internal/service"
	"github.com/labstack/echo/v4" // Echo web framework
)

// taxAmount is the flat per-leg tax charged on every booking.
const taxAmount = 8800

// OrderHandler groups the repositories required to book, list and
// cancel seat reservations.  All methods assume that JWT
// authentication has already been performed by middleware.  Booking
// and cancellation run their critical DB operations inside a
// transaction to guarantee atomicity: either the order, all of its
// legs and every seat decrement commit together, or nothing does.
type OrderHandler struct {
	ScheduleRepo *repository.ScheduleRepo // seat ledger access
	OrderRepo    *repository.OrderRepo    // orders and booking legs
}

// NewOrderHandler constructs a new OrderHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewOrderHandler(scheduleRepo *repository.ScheduleRepo, orderRepo *repository.OrderRepo) *OrderHandler {
	if scheduleRepo == nil || orderRepo == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{ScheduleRepo: scheduleRepo, OrderRepo: orderRepo}
}

// bookReq is the create-reservation request body.  PassengerNumber is
// a pointer so an absent field can be told apart from zero.  A zero
// ComingScheduleID means a one-way trip.
type bookReq struct {
	PassengerNumber  *int   `json:"passenger_number"`
	GoingScheduleID  uint64 `json:"going_schedule_id"`
	ComingScheduleID uint64 `json:"coming_schedule_id"`
}

// CreateOrder handles POST /v1/orders.  It books one order spanning
// one or two schedule legs.  Seat availability is enforced by the
// ledger's conditional decrement, applied once per distinct schedule
// with the combined passenger requirement, so a degenerate round trip
// on the same schedule cannot slip past a stale availability read.
// Responses: 201 success, 400 key_error/no_body/invalid_id,
// 401 no_seat_remain.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
	}
	var body bookReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no_body"})
	}
	if body.PassengerNumber == nil || *body.PassengerNumber <= 0 || body.GoingScheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "key_error"})
	}
	pax := *body.PassengerNumber

	// Legs in request order: going first, coming second when present.
	legIDs := []uint64{body.GoingScheduleID}
	if body.ComingScheduleID != 0 {
		legIDs = append(legIDs, body.ComingScheduleID)
	}

	// Collapse duplicate schedule ids, preserving first-occurrence
	// order, and total the seats each distinct schedule must supply.
	distinct := make([]uint64, 0, len(legIDs))
	need := make(map[uint64]int, len(legIDs))
	for _, id := range legIDs {
		if _, ok := need[id]; !ok {
			distinct = append(distinct, id)
		}
		need[id] += pax
	}

	ctx := c.Request().Context()
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "transaction_failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Take seats from each distinct schedule. A failure on any leg
	// rolls back every decrement already applied, so no partial order
	// is ever visible.
	for _, id := range distinct {
		if err := h.ScheduleRepo.ReserveSeatsTx(ctx, tx, id, need[id]); err != nil {
			if errors.Is(err, repository.ErrScheduleNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
			}
			if errors.Is(err, repository.ErrNoSeatsRemaining) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no_seat_remain"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
	}

	order := &model.Order{UserID: userID, Status: model.OrderStatusBooked}
	if err := h.OrderRepo.CreateTx(ctx, tx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	legs := make([]model.Booking, 0, len(legIDs))
	for i, id := range legIDs {
		legs = append(legs, model.Booking{
			OrderID:         order.ID,
			ScheduleID:      id,
			Position:        i,
			PassengerNumber: pax,
			Tax:             taxAmount,
		})
	}
	if err := h.OrderRepo.CreateBookingsBulkTx(ctx, tx, legs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "transaction_failed"})
	}
	committed = true

	// Best-effort event publish; booking success does not depend on it.
	_ = queue_publisher.PublishOrderEvent(ctx, queue.OrderEvent{
		Type:            queue.EventOrderBooked,
		OrderID:         order.ID,
		UserID:          userID,
		PassengerNumber: pax,
		ScheduleIDs:     legIDs,
		RoundTrip:       len(legIDs) == 2,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "success"})
}

// ListOrders handles GET /v1/orders.  It returns the caller's orders
// projected into going/coming display views, newest first.  An order
// with no legs is a data fault and yields 400 data_error.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
	}
	ctx := c.Request().Context()
	views, err := h.OrderRepo.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoBookings) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "data_error"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"result": views})
}

// CancelOrder handles DELETE /v1/orders/:id.  It restores each leg's
// seats to the ledger in leg order, then removes the bookings and the
// order, all inside one transaction.  Responses: 201 success,
// 400 invalid_id, 403 invalid_user.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}
	ctx := c.Request().Context()
	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "transaction_failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	legs, err := h.OrderRepo.GetLegsForUserTx(ctx, tx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid_user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}

	// Give every leg's seats back before the rows disappear, in the
	// same going-then-coming order the legs were created.
	var pax int
	scheduleIDs := make([]uint64, 0, len(legs))
	for _, leg := range legs {
		if err := h.ScheduleRepo.RestoreSeatsTx(ctx, tx, leg.ScheduleID, leg.PassengerNumber); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
		scheduleIDs = append(scheduleIDs, leg.ScheduleID)
		pax = leg.PassengerNumber
	}
	if err := h.OrderRepo.DeleteTx(ctx, tx, orderID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "transaction_failed"})
	}
	committed = true

	_ = queue_publisher.PublishOrderEvent(ctx, queue.OrderEvent{
		Type:            queue.EventOrderCancelled,
		OrderID:         orderID,
		UserID:          userID,
		PassengerNumber: pax,
		ScheduleIDs:     scheduleIDs,
		RoundTrip:       len(scheduleIDs) == 2,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "success"})
}
