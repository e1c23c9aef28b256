package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openpark/parking-reservation/internal/model"
)

// LotRepo encapsulates database operations for parking_lots.  Writes
// that must observe a consistent occupancy snapshot are exposed as
// XxxTx variants operating on a caller-supplied transaction; the
// caller commits or rolls back.
type LotRepo struct {
	db *sql.DB
}

// NewLotRepo constructs a LotRepo given a DB handle.
func NewLotRepo(db *sql.DB) *LotRepo { return &LotRepo{db: db} }

// CreateTx inserts a new lot within the given transaction and
// populates the generated ID and timestamps on the model.
func (r *LotRepo) CreateTx(ctx context.Context, tx *sql.Tx, lot *model.ParkingLot) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO parking_lots (name, hourly_rate, address, pin_code, total_spots) VALUES (?,?,?,?,?)`,
		lot.Name, lot.HourlyRate, lot.Address, lot.PinCode, lot.TotalSpots)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	lot.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM parking_lots WHERE id = ?`, lot.ID).
		Scan(&lot.CreatedAt, &lot.UpdatedAt)
}

// GetByID returns a single lot.  Misses map to ErrLotNotFound.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return scanLot(r.db.QueryRowContext(ctx,
		`SELECT id, name, hourly_rate, address, pin_code, total_spots, created_at, updated_at
		 FROM parking_lots WHERE id = ?`, id))
}

// GetByIDTx is GetByID inside a transaction, locking the lot row so a
// concurrent resize or delete cannot slip between the occupancy check
// and the mutation.
func (r *LotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ParkingLot, error) {
	return scanLot(tx.QueryRowContext(ctx,
		`SELECT id, name, hourly_rate, address, pin_code, total_spots, created_at, updated_at
		 FROM parking_lots WHERE id = ? FOR UPDATE`, id))
}

func scanLot(row *sql.Row) (*model.ParkingLot, error) {
	var l model.ParkingLot
	err := row.Scan(&l.ID, &l.Name, &l.HourlyRate, &l.Address, &l.PinCode,
		&l.TotalSpots, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateTx applies the lot's mutable fields within the transaction.
func (r *LotRepo) UpdateTx(ctx context.Context, tx *sql.Tx, lot *model.ParkingLot) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE parking_lots SET name=?, hourly_rate=?, address=?, pin_code=?, total_spots=? WHERE id=?`,
		lot.Name, lot.HourlyRate, lot.Address, lot.PinCode, lot.TotalSpots, lot.ID)
	return err
}

// DeleteTx removes the lot row itself.  Dependent spots are deleted
// explicitly by the service beforehand; there is no cascade in the
// schema.
func (r *LotRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLotNotFound
	}
	return nil
}

// LotWithAvailability pairs a lot with its current number of
// AVAILABLE spots.  It is produced by Search for the public browse
// endpoints.
type LotWithAvailability struct {
	model.ParkingLot
	AvailableSpots uint32
}

// Search returns lots whose name, address or pin code contains the
// query, case-insensitively, each annotated with its available-spot
// count.  An empty query returns every lot.  Results are ordered by
// lot ID for stable paging.
func (r *LotRepo) Search(ctx context.Context, query string) ([]LotWithAvailability, error) {
	const q = `SELECT l.id, l.name, l.hourly_rate, l.address, l.pin_code, l.total_spots,
	                  l.created_at, l.updated_at,
	                  COALESCE(SUM(s.status = 'AVAILABLE'), 0)
	           FROM parking_lots l
	           LEFT JOIN parking_spots s ON s.lot_id = l.id
	           WHERE ? = '' OR l.name LIKE ? OR l.address LIKE ? OR l.pin_code LIKE ?
	           GROUP BY l.id
	           ORDER BY l.id`
	like := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, q, query, like, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LotWithAvailability
	for rows.Next() {
		var la LotWithAvailability
		if err := rows.Scan(&la.ID, &la.Name, &la.HourlyRate, &la.Address, &la.PinCode,
			&la.TotalSpots, &la.CreatedAt, &la.UpdatedAt, &la.AvailableSpots); err != nil {
			return nil, err
		}
		out = append(out, la)
	}
	return out, rows.Err()
}

// LotStats aggregates spot counts for one lot.
type LotStats struct {
	LotID     uint64
	Name      string
	Total     uint32
	Occupied  uint32
	Available uint32
}

// Stats returns per-lot occupancy counters for every lot in a single
// aggregate query.  Lots without spots report zero across the board.
func (r *LotRepo) Stats(ctx context.Context) ([]LotStats, error) {
	const q = `SELECT l.id, l.name,
	                  COUNT(s.id),
	                  COALESCE(SUM(s.status = 'OCCUPIED'), 0),
	                  COALESCE(SUM(s.status = 'AVAILABLE'), 0)
	           FROM parking_lots l
	           LEFT JOIN parking_spots s ON s.lot_id = l.id
	           GROUP BY l.id
	           ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LotStats
	for rows.Next() {
		var st LotStats
		if err := rows.Scan(&st.LotID, &st.Name, &st.Total, &st.Occupied, &st.Available); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
