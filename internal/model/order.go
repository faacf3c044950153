package model

import "time"

// Order status values stored in orders.status.
const (
	OrderStatusBooked    = "BOOKED"
	OrderStatusFinished  = "FINISHED"
	OrderStatusCancelled = "CANCELLED"
)

// Order is one purchase transaction by one user.  An order owns one
// booking for a one-way trip or two bookings for a round trip.
// Cancellation hard-deletes the order together with its bookings.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who placed the order.
//  Status    – one of the OrderStatus constants.
//  CreatedAt – creation timestamp, drives newest-first listing.
type Order struct {
	ID        uint64    // orders.id
	UserID    uint64    // orders.user_id
	Status    string    // orders.status
	CreatedAt time.Time // orders.created_at
}

// Booking is one leg of an order, tying the order to a schedule.
// Position makes the going/coming convention explicit: position 0 is
// always the going leg and position 1 the coming leg of a round
// trip.  Both legs of an order share the same passenger count.
//
// Fields:
//  ID              – primary key identifier.
//  OrderID         – owning order.
//  ScheduleID      – schedule run this leg rides on.
//  Position        – 0 for going, 1 for coming.
//  PassengerNumber – seats taken on the schedule by this leg.
//  Tax             – flat tax amount charged per leg.
type Booking struct {
	ID              uint64 // bookings.id
	OrderID         uint64 // bookings.order_id
	ScheduleID      uint64 // bookings.schedule_id
	Position        int    // bookings.position
	PassengerNumber int    // bookings.passenger_number
	Tax             int64  // bookings.tax
}
