package model

import "time"

// Spot status values.  A spot is OCCUPIED exactly while it has one
// ACTIVE reservation and AVAILABLE otherwise.
const (
	SpotAvailable = "AVAILABLE"
	SpotOccupied  = "OCCUPIED"
)

// ParkingSpot is one allocatable parking unit inside a lot.  Spots
// are numbered 1..N within their lot and the (lot, number) pair is
// unique.
//
// Fields:
//  ID         – primary key identifier.
//  LotID      – lot that owns this spot.
//  SpotNumber – position of the spot within the lot (unique per lot).
//  Status     – AVAILABLE or OCCUPIED.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type ParkingSpot struct {
	ID         uint64    // parking_spots.id
	LotID      uint64    // parking_spots.lot_id
	SpotNumber uint32    // parking_spots.spot_number
	Status     string    // parking_spots.status
	CreatedAt  time.Time // parking_spots.created_at
	UpdatedAt  time.Time // parking_spots.updated_at
}
