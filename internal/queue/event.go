// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in OrderEvent.Type.
const (
	EventOrderBooked    = "order.booked"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is published when an order is booked or cancelled.  It
// contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type OrderEvent struct {
	Type            string   `json:"type"`
	OrderID         uint64   `json:"order_id"`
	UserID          uint64   `json:"user_id"`
	PassengerNumber int      `json:"passenger_number"`
	ScheduleIDs     []uint64 `json:"schedule_ids"`
	RoundTrip       bool     `json:"round_trip"`
	OccurredAt      string   `json:"occurred_at"`
}
