package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/openpark/parking-reservation/internal/duration"
	"github.com/openpark/parking-reservation/internal/model"
	"github.com/openpark/parking-reservation/internal/repository"
)

// ErrInvalidLot is returned when lot input fails validation: empty
// name, negative hourly rate or a zero spot count.
var ErrInvalidLot = errors.New("invalid lot parameters")

// LotInput carries the admin-supplied fields for creating or updating
// a lot.
type LotInput struct {
	Name       string
	HourlyRate float64
	Address    string
	PinCode    string
	TotalSpots uint32
}

func (in LotInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || in.HourlyRate < 0 || in.TotalSpots == 0 {
		return ErrInvalidLot
	}
	return nil
}

// LotService manages the lot spot pools.  Structural changes are
// refused wholesale while any spot in the lot is occupied; the guard
// and the mutation run under one transaction.
type LotService struct {
	db           *sql.DB
	lots         *repository.LotRepo
	spots        *repository.SpotRepo
	reservations *repository.ReservationRepo
}

// NewLotService constructs a LotService.  All dependencies must be
// non-nil.
func NewLotService(db *sql.DB, lots *repository.LotRepo, spots *repository.SpotRepo, reservations *repository.ReservationRepo) *LotService {
	if db == nil || lots == nil || spots == nil || reservations == nil {
		panic("nil dependency passed to NewLotService")
	}
	return &LotService{db: db, lots: lots, spots: spots, reservations: reservations}
}

// Create provisions a new lot together with spots numbered
// 1..TotalSpots, all AVAILABLE, in one transaction.
func (s *LotService) Create(ctx context.Context, in LotInput) (*model.ParkingLot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create-lot tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lot := &model.ParkingLot{
		Name:       strings.TrimSpace(in.Name),
		HourlyRate: in.HourlyRate,
		Address:    in.Address,
		PinCode:    in.PinCode,
		TotalSpots: in.TotalSpots,
	}
	if err := s.lots.CreateTx(ctx, tx, lot); err != nil {
		return nil, err
	}
	if err := s.spots.CreateRangeTx(ctx, tx, lot.ID, 1, in.TotalSpots); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create-lot tx: %w", err)
	}
	committed = true
	return lot, nil
}

// Resize updates a lot's fields and adjusts its spot pool to the new
// size.  Any OCCUPIED spot in the lot rejects the whole operation
// with ErrLotOccupied and nothing is applied.  Growing appends spots
// numbered (current+1)..new; shrinking removes the highest-numbered
// AVAILABLE spots so numbering stays contiguous from 1.
func (s *LotService) Resize(ctx context.Context, lotID uint64, in LotInput) (*model.ParkingLot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin resize-lot tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lot, err := s.lots.GetByIDTx(ctx, tx, lotID)
	if err != nil {
		return nil, err
	}
	current, occupied, err := s.spots.CountByLotTx(ctx, tx, lotID)
	if err != nil {
		return nil, err
	}
	if occupied > 0 {
		return nil, repository.ErrLotOccupied
	}

	switch {
	case in.TotalSpots > current:
		if err := s.spots.CreateRangeTx(ctx, tx, lotID, current+1, in.TotalSpots); err != nil {
			return nil, err
		}
	case in.TotalSpots < current:
		if err := s.spots.DeleteHighestAvailableTx(ctx, tx, lotID, current-in.TotalSpots); err != nil {
			return nil, err
		}
	}

	lot.Name = strings.TrimSpace(in.Name)
	lot.HourlyRate = in.HourlyRate
	lot.Address = in.Address
	lot.PinCode = in.PinCode
	lot.TotalSpots = in.TotalSpots
	if err := s.lots.UpdateTx(ctx, tx, lot); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit resize-lot tx: %w", err)
	}
	committed = true
	return lot, nil
}

// Delete removes a lot and all of its spots under the same occupancy
// guard as Resize.  Spots are deleted explicitly before the lot row;
// historical reservations referencing the removed spots are retained
// for audit.
func (s *LotService) Delete(ctx context.Context, lotID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete-lot tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.lots.GetByIDTx(ctx, tx, lotID); err != nil {
		return err
	}
	_, occupied, err := s.spots.CountByLotTx(ctx, tx, lotID)
	if err != nil {
		return err
	}
	if occupied > 0 {
		return repository.ErrLotOccupied
	}
	if err := s.spots.DeleteByLotTx(ctx, tx, lotID); err != nil {
		return err
	}
	if err := s.lots.DeleteTx(ctx, tx, lotID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete-lot tx: %w", err)
	}
	committed = true
	return nil
}

// Get returns a single lot by ID.
func (s *LotService) Get(ctx context.Context, lotID uint64) (*model.ParkingLot, error) {
	return s.lots.GetByID(ctx, lotID)
}

// Search returns lots matching the free-text query on name, address
// or pin code, each annotated with its available-spot count.  An
// empty query lists every lot.
func (s *LotService) Search(ctx context.Context, query string) ([]repository.LotWithAvailability, error) {
	return s.lots.Search(ctx, strings.TrimSpace(query))
}

// SpotView pairs a spot with its current occupant, if any.  Occupied
// spots carry the reservation, the holder and the running duration.
type SpotView struct {
	Spot            model.ParkingSpot        `json:"spot"`
	Occupant        *repository.SpotOccupant `json:"occupant,omitempty"`
	DurationHours   int                      `json:"duration_hours,omitempty"`
	DurationMinutes int                      `json:"duration_minutes,omitempty"`
}

// Spots returns every spot of the lot ordered by number; occupied
// spots include the active reservation and its running duration.
func (s *LotService) Spots(ctx context.Context, lotID uint64) ([]SpotView, error) {
	if _, err := s.lots.GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	spots, err := s.spots.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	occupants, err := s.reservations.ActiveBySpots(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := make([]SpotView, 0, len(spots))
	for _, sp := range spots {
		view := SpotView{Spot: sp}
		if occ, ok := occupants[sp.ID]; ok {
			o := occ
			view.Occupant = &o
			elapsed, err := duration.ElapsedSince(occ.EntryTime)
			if err != nil {
				return nil, err
			}
			view.DurationHours = elapsed.Hours
			view.DurationMinutes = elapsed.Minutes
		}
		out = append(out, view)
	}
	return out, nil
}

// Stats reports system-wide and per-lot occupancy counters.
type Stats struct {
	TotalSpots     uint32                `json:"total_spots"`
	OccupiedSpots  uint32                `json:"occupied_spots"`
	AvailableSpots uint32                `json:"available_spots"`
	Lots           []repository.LotStats `json:"lots"`
}

// Stats aggregates current occupancy for the admin dashboard.
func (s *LotService) Stats(ctx context.Context) (*Stats, error) {
	total, occupied, err := s.spots.GlobalCounts(ctx)
	if err != nil {
		return nil, err
	}
	perLot, err := s.lots.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalSpots:     total,
		OccupiedSpots:  occupied,
		AvailableSpots: total - occupied,
		Lots:           perLot,
	}, nil
}
