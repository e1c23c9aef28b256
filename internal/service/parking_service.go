// Package service implements the allocation and billing core on top of
// the repository layer.  Every operation that mutates shared state runs
// inside a single database transaction so concurrent requests observe a
// consistent snapshot: two bookings can never claim the same spot, and
// a lot mutation can never race with a booking.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/openpark/parking-reservation/internal/duration"
	"github.com/openpark/parking-reservation/internal/model"
	"github.com/openpark/parking-reservation/internal/queue"
	"github.com/openpark/parking-reservation/internal/repository"
)

// ParkingService performs spot allocation and reservation lifecycle
// operations for drivers.
type ParkingService struct {
	db           *sql.DB
	lots         *repository.LotRepo
	spots        *repository.SpotRepo
	reservations *repository.ReservationRepo
}

// NewParkingService constructs a ParkingService.  All dependencies
// must be non-nil.
func NewParkingService(db *sql.DB, lots *repository.LotRepo, spots *repository.SpotRepo, reservations *repository.ReservationRepo) *ParkingService {
	if db == nil || lots == nil || spots == nil || reservations == nil {
		panic("nil dependency passed to NewParkingService")
	}
	return &ParkingService{db: db, lots: lots, spots: spots, reservations: reservations}
}

// Book claims one available spot in the lot for the user.  Inside a
// single transaction it verifies the user holds no ACTIVE reservation
// (ErrUserAlreadyParked), locks the lowest-numbered AVAILABLE spot
// (ErrNoAvailableSpot when the lot is full), flips it to OCCUPIED and
// inserts an ACTIVE reservation stamped with the current instant in
// the reference zone.  A parking.booked event is published after
// commit, best effort.
func (s *ParkingService) Book(ctx context.Context, userID, lotID uint64) (*model.Reservation, error) {
	lot, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	parked, err := s.reservations.HasActiveByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if parked {
		return nil, repository.ErrUserAlreadyParked
	}

	spot, err := s.spots.LockLowestAvailableTx(ctx, tx, lotID)
	if err != nil {
		return nil, err
	}
	if err := s.spots.UpdateStatusTx(ctx, tx, spot.ID, model.SpotOccupied); err != nil {
		return nil, err
	}

	res := &model.Reservation{
		SpotID:    spot.ID,
		UserID:    userID,
		EntryTime: duration.Now(),
		TotalCost: 0,
		Status:    model.ReservationActive,
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking tx: %w", err)
	}
	committed = true

	if err := queue.PublishSpotBooked(ctx, queue.SpotBookedEvent{
		ReservationID: res.ID,
		UserID:        userID,
		LotID:         lot.ID,
		LotName:       lot.Name,
		SpotNumber:    spot.SpotNumber,
		EntryTime:     res.EntryTime.Format(time.RFC3339),
	}); err != nil {
		log.Printf("book: publish event failed: %v", err)
	}
	return res, nil
}

// Release finalises the user's reservation and returns the final cost.
// Inside a single transaction it locks the ACTIVE reservation joined
// with its spot and lot (ErrReservationNotFound on any miss: unknown
// ID, different owner or already released), computes the cost from the
// elapsed fractional hours times the lot's hourly rate, stamps the
// exit time, marks the reservation COMPLETED and returns the spot to
// AVAILABLE.  Cost is never recomputed afterwards; a repeated release
// fails with ErrReservationNotFound.
func (s *ParkingService) Release(ctx context.Context, reservationID, userID uint64) (float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin release tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	active, err := s.reservations.LockActiveForReleaseTx(ctx, tx, reservationID, userID)
	if err != nil {
		return 0, err
	}

	exitTime := duration.Now()
	elapsed, err := duration.Elapsed(active.Reservation.EntryTime, exitTime)
	if err != nil {
		return 0, err
	}
	cost := duration.Cost(elapsed, active.HourlyRate)

	if err := s.reservations.CompleteTx(ctx, tx, reservationID, exitTime, cost); err != nil {
		return 0, err
	}
	if err := s.spots.UpdateStatusTx(ctx, tx, active.SpotID, model.SpotAvailable); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit release tx: %w", err)
	}
	committed = true

	if err := queue.PublishSpotReleased(ctx, queue.SpotReleasedEvent{
		ReservationID: reservationID,
		UserID:        userID,
		SpotID:        active.SpotID,
		EntryTime:     active.Reservation.EntryTime.Format(time.RFC3339),
		ExitTime:      exitTime.Format(time.RFC3339),
		TotalCost:     cost,
	}); err != nil {
		log.Printf("release: publish event failed: %v", err)
	}
	return cost, nil
}

// ActiveReservationView is an ACTIVE reservation annotated with its
// running duration and the cost accrued so far.  The accrued cost is
// informational; the binding figure is computed at release time.
type ActiveReservationView struct {
	repository.ReservationDetail
	DurationHours   int     `json:"duration_hours"`
	DurationMinutes int     `json:"duration_minutes"`
	CurrentCost     float64 `json:"current_cost"`
}

// CompletedReservationView is a COMPLETED reservation annotated with
// its final duration.
type CompletedReservationView struct {
	repository.ReservationDetail
	DurationHours   int `json:"duration_hours"`
	DurationMinutes int `json:"duration_minutes"`
}

// Dashboard summarises a driver's parking activity: current
// reservations with running cost plus recent history with totals.
type Dashboard struct {
	Active     []ActiveReservationView    `json:"active"`
	History    []CompletedReservationView `json:"history"`
	TotalHours float64                    `json:"total_hours"`
	TotalCost  float64                    `json:"total_cost"`
}

// historyLimit caps the number of completed reservations shown on the
// dashboard.
const historyLimit = 10

// Dashboard loads the user's active and recent completed reservations
// and computes the display durations and totals.
func (s *ParkingService) Dashboard(ctx context.Context, userID uint64) (*Dashboard, error) {
	active, err := s.reservations.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.reservations.ListCompletedByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Active:  make([]ActiveReservationView, 0, len(active)),
		History: make([]CompletedReservationView, 0, len(history)),
	}
	for _, det := range active {
		elapsed, err := duration.ElapsedSince(det.EntryTime)
		if err != nil {
			return nil, err
		}
		d.Active = append(d.Active, ActiveReservationView{
			ReservationDetail: det,
			DurationHours:     elapsed.Hours,
			DurationMinutes:   elapsed.Minutes,
			CurrentCost:       duration.Cost(elapsed, det.HourlyRate),
		})
	}
	for _, det := range history {
		view := CompletedReservationView{ReservationDetail: det}
		if det.ExitTime != nil {
			elapsed, err := duration.Elapsed(det.EntryTime, *det.ExitTime)
			if err != nil {
				return nil, err
			}
			view.DurationHours = elapsed.Hours
			view.DurationMinutes = elapsed.Minutes
			d.TotalHours += elapsed.TotalHours
		}
		d.TotalCost += det.TotalCost
		d.History = append(d.History, view)
	}
	return d, nil
}
