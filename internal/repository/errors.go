// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. All of
// them describe recoverable, caller-facing conditions; database
// failures (connectivity, constraint violations) are returned as plain
// errors and surface as HTTP 500 at the handlers.
package repository

import "errors"

// ErrUserAlreadyParked is returned when a user who already holds an
// ACTIVE reservation attempts to book another spot. Handlers should
// translate this into an HTTP 409 response.
var ErrUserAlreadyParked = errors.New("user already has an active reservation")

// ErrNoAvailableSpot is returned when a booking targets a lot with no
// AVAILABLE spot left. Handlers should translate this into an HTTP
// 409 response.
var ErrNoAvailableSpot = errors.New("no available spot in lot")

// ErrLotOccupied is returned when a lot resize or delete is attempted
// while at least one of the lot's spots is OCCUPIED. The structural
// change is rejected wholesale. Handlers should translate this into
// an HTTP 409 response.
var ErrLotOccupied = errors.New("lot has occupied spots")

// ErrReservationNotFound is returned when a release targets a
// reservation that does not exist, does not belong to the caller or
// is no longer ACTIVE. The three cases are intentionally
// indistinguishable to the caller. Handlers should translate this
// into an HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrLotNotFound is returned when a lot lookup by ID matches no row.
var ErrLotNotFound = errors.New("parking lot not found")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned on registration when the email address is
// already in use.
var ErrEmailTaken = errors.New("email already registered")
