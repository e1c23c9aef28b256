// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background log consumer.
package queue

// SpotBookedEvent is published when a spot has been claimed. It contains
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type SpotBookedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	LotID         uint64 `json:"lot_id"`
	LotName       string `json:"lot_name"`
	SpotNumber    uint32 `json:"spot_number"`
	EntryTime     string `json:"entry_time"`
}

// SpotReleasedEvent is published when a reservation completes and its
// spot returns to the pool.
type SpotReleasedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	SpotID        uint64  `json:"spot_id"`
	EntryTime     string  `json:"entry_time"`
	ExitTime      string  `json:"exit_time"`
	TotalCost     float64 `json:"total_cost"`
}
