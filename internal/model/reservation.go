package model

import "time"

// Reservation status values.  A reservation is created ACTIVE and is
// finalised exactly once: release sets COMPLETED together with the
// exit time and cost.  CANCELLED exists for administrative voiding.
const (
	ReservationActive    = "ACTIVE"
	ReservationCompleted = "COMPLETED"
	ReservationCancelled = "CANCELLED"
)

// Reservation binds a user to a single spot for a time interval and
// carries the cost derived from that interval.  At most one ACTIVE
// reservation exists per user and per spot at any time.
//
// Fields:
//  ID        – primary key identifier.
//  SpotID    – spot claimed by this reservation.
//  UserID    – user who parked.
//  EntryTime – instant the spot was claimed, in the reference zone.
//  ExitTime  – instant the spot was released (nil while ACTIVE).
//  TotalCost – final cost; zero until the reservation completes.
//  Status    – ACTIVE, COMPLETED or CANCELLED.
//  CreatedAt – creation timestamp.
type Reservation struct {
	ID        uint64     // reservations.id
	SpotID    uint64     // reservations.spot_id
	UserID    uint64     // reservations.user_id
	EntryTime time.Time  // reservations.entry_time
	ExitTime  *time.Time // reservations.exit_time (nullable)
	TotalCost float64    // reservations.total_cost
	Status    string     // reservations.status
	CreatedAt time.Time  // reservations.created_at
}
