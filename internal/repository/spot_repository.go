package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openpark/parking-reservation/internal/model"
)

// SpotRepo encapsulates database operations for parking_spots.  The
// allocator-facing methods lock rows with FOR UPDATE so that two
// concurrent bookings can never claim the same spot and a lot
// mutation can never race with a booking.
type SpotRepo struct {
	db *sql.DB
}

// NewSpotRepo constructs a SpotRepo given a DB handle.
func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

// CreateRangeTx bulk-inserts AVAILABLE spots numbered from..to
// (inclusive) for the lot within the given transaction.  An inverted
// range has no effect and returns nil.
func (r *SpotRepo) CreateRangeTx(ctx context.Context, tx *sql.Tx, lotID uint64, from, to uint32) error {
	if from > to {
		return nil
	}
	query := `INSERT INTO parking_spots (lot_id, spot_number, status) VALUES `
	args := make([]interface{}, 0, int(to-from+1)*3)
	for n := from; n <= to; n++ {
		if n > from {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, lotID, n, model.SpotAvailable)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// LockLowestAvailableTx selects the AVAILABLE spot with the lowest
// spot number in the lot and locks its row.  The lowest-number
// tie-break keeps allocation deterministic.  When every spot is
// taken it returns ErrNoAvailableSpot.
func (r *SpotRepo) LockLowestAvailableTx(ctx context.Context, tx *sql.Tx, lotID uint64) (*model.ParkingSpot, error) {
	var s model.ParkingSpot
	err := tx.QueryRowContext(ctx,
		`SELECT id, lot_id, spot_number, status, created_at, updated_at
		 FROM parking_spots
		 WHERE lot_id = ? AND status = 'AVAILABLE'
		 ORDER BY spot_number ASC
		 LIMIT 1
		 FOR UPDATE`, lotID).
		Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAvailableSpot
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStatusTx flips a single spot's status within the transaction.
func (r *SpotRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, spotID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE parking_spots SET status = ? WHERE id = ?`, status, spotID)
	return err
}

// CountByLotTx locks all of the lot's spot rows and returns total and
// occupied counts.  Locking the full set is what makes the "no spot
// is occupied" guard and the subsequent mutation observe one
// consistent snapshot.
func (r *SpotRepo) CountByLotTx(ctx context.Context, tx *sql.Tx, lotID uint64) (total, occupied uint32, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status = 'OCCUPIED'), 0)
		 FROM parking_spots WHERE lot_id = ? FOR UPDATE`, lotID).
		Scan(&total, &occupied)
	return total, occupied, err
}

// DeleteHighestAvailableTx removes the n highest-numbered AVAILABLE
// spots of the lot.  Shrinking from the top keeps spot numbering
// contiguous at 1..N.  Callers must have verified the occupancy
// guard first; an OCCUPIED spot is never touched here.
func (r *SpotRepo) DeleteHighestAvailableTx(ctx context.Context, tx *sql.Tx, lotID uint64, n uint32) error {
	if n == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM parking_spots
		 WHERE lot_id = ? AND status = 'AVAILABLE'
		 ORDER BY spot_number DESC
		 LIMIT ?`, lotID, n)
	return err
}

// DeleteByLotTx removes every spot of the lot.  Used by lot deletion
// after the occupancy guard has passed.
func (r *SpotRepo) DeleteByLotTx(ctx context.Context, tx *sql.Tx, lotID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = ?`, lotID)
	return err
}

// ListByLot returns all spots of a lot ordered by spot number.
func (r *SpotRepo) ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, lot_id, spot_number, status, created_at, updated_at
		 FROM parking_spots WHERE lot_id = ? ORDER BY spot_number`, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ParkingSpot
	for rows.Next() {
		var s model.ParkingSpot
		if err := rows.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GlobalCounts returns system-wide total and occupied spot counts.
func (r *SpotRepo) GlobalCounts(ctx context.Context) (total, occupied uint32, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status = 'OCCUPIED'), 0) FROM parking_spots`).
		Scan(&total, &occupied)
	return total, occupied, err
}
