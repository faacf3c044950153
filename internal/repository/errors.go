// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrNoSeatsRemaining signals that a schedule
// cannot absorb the requested passenger count.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own, such as cancelling another
// user's order. Handlers should translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")

// ErrScheduleNotFound indicates that a referenced schedule does not
// exist in the DB.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrOrderNotFound indicates that an order was not located in the DB.
var ErrOrderNotFound = errors.New("order not found")

// ErrNoSeatsRemaining is returned when a conditional seat decrement
// fails because the schedule does not have enough remaining seats
// for the requested passenger count. The ledger is left untouched.
var ErrNoSeatsRemaining = errors.New("no seats remaining")

// ErrNoBookings signals a data-consistency fault: an order exists
// with zero booking legs. Handlers should translate this into a
// data_error response rather than producing a malformed view.
var ErrNoBookings = errors.New("order has no bookings")

// ErrLocationNotFound indicates that a location lookup matched no row.
var ErrLocationNotFound = errors.New("location not found")

// ErrDriverNotFound indicates that a taxi driver lookup matched no row.
var ErrDriverNotFound = errors.New("driver not found")

// ErrReviewNotFound indicates that a driver review lookup matched no row.
var ErrReviewNotFound = errors.New("review not found")
