package model

import "time"

// ParkingLot describes one physical parking location and its
// pricing.  A lot owns a fixed pool of numbered spots; TotalSpots
// always equals the number of rows provisioned for the lot in the
// parking_spots table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the location.
//  HourlyRate – price charged per hour of occupancy (non-negative).
//  Address    – street address of the lot.
//  PinCode    – postal code of the lot.
//  TotalSpots – declared number of spots; matches provisioned rows.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type ParkingLot struct {
	ID         uint64    // parking_lots.id
	Name       string    // parking_lots.name
	HourlyRate float64   // parking_lots.hourly_rate
	Address    string    // parking_lots.address
	PinCode    string    // parking_lots.pin_code
	TotalSpots uint32    // parking_lots.total_spots
	CreatedAt  time.Time // parking_lots.created_at
	UpdatedAt  time.Time // parking_lots.updated_at
}
