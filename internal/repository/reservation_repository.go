package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openpark/parking-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  A
// reservation binds one user to one spot; the one-ACTIVE-per-user and
// one-ACTIVE-per-spot invariants are enforced by the allocator
// running these methods under a single transaction with row locks.
// All timestamp columns are stored as DATETIME in the reference
// timezone; the DSN loc parameter parses them back into that zone.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// HasActiveByUserTx reports whether the user currently holds an
// ACTIVE reservation, locking any such row so a concurrent booking
// by the same user serializes behind this one.
func (r *ReservationRepo) HasActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (bool, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM reservations WHERE user_id = ? AND status = 'ACTIVE' LIMIT 1 FOR UPDATE`,
		userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a new ACTIVE reservation within the transaction
// and populates the generated ID on the provided record.  The caller
// must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (spot_id, user_id, entry_time, total_cost, status) VALUES (?,?,?,?,?)`,
		res.SpotID, res.UserID, res.EntryTime, res.TotalCost, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM reservations WHERE id = ?`, res.ID).Scan(&res.CreatedAt)
}

// ActiveForRelease carries everything the lifecycle needs to finalise
// a reservation: the reservation row plus the spot and the owning
// lot's hourly rate, resolved in one join instead of lazy traversal.
type ActiveForRelease struct {
	Reservation model.Reservation
	SpotID      uint64
	HourlyRate  float64
}

// LockActiveForReleaseTx loads and locks the ACTIVE reservation with
// the given ID belonging to the given user, joined with its spot and
// lot.  A miss (wrong ID, wrong owner or already released) maps to
// ErrReservationNotFound; the cases are indistinguishable to the
// caller.
func (r *ReservationRepo) LockActiveForReleaseTx(ctx context.Context, tx *sql.Tx, reservationID, userID uint64) (*ActiveForRelease, error) {
	var a ActiveForRelease
	err := tx.QueryRowContext(ctx,
		`SELECT r.id, r.spot_id, r.user_id, r.entry_time, r.total_cost, r.status, r.created_at,
		        s.id, l.hourly_rate
		 FROM reservations r
		 JOIN parking_spots s ON s.id = r.spot_id
		 JOIN parking_lots l ON l.id = s.lot_id
		 WHERE r.id = ? AND r.user_id = ? AND r.status = 'ACTIVE'
		 FOR UPDATE`, reservationID, userID).
		Scan(&a.Reservation.ID, &a.Reservation.SpotID, &a.Reservation.UserID,
			&a.Reservation.EntryTime, &a.Reservation.TotalCost, &a.Reservation.Status,
			&a.Reservation.CreatedAt, &a.SpotID, &a.HourlyRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CompleteTx finalises a reservation: exit time, cost and COMPLETED
// status are set exactly once.  The status predicate makes the write
// idempotent; a second attempt affects zero rows and returns
// ErrReservationNotFound.
func (r *ReservationRepo) CompleteTx(ctx context.Context, tx *sql.Tx, reservationID uint64, exitTime time.Time, cost float64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET exit_time = ?, total_cost = ?, status = 'COMPLETED'
		 WHERE id = ? AND status = 'ACTIVE'`, exitTime, cost, reservationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ReservationDetail is a reservation joined with its spot and lot for
// display on the driver dashboard and admin spot views.
type ReservationDetail struct {
	ID         uint64     `json:"id"`
	SpotID     uint64     `json:"spot_id"`
	SpotNumber uint32     `json:"spot_number"`
	LotID      uint64     `json:"lot_id"`
	LotName    string     `json:"lot_name"`
	HourlyRate float64    `json:"hourly_rate"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`
	TotalCost  float64    `json:"total_cost"`
	Status     string     `json:"status"`
}

const detailColumns = `r.id, r.spot_id, s.spot_number, l.id, l.name, l.hourly_rate,
	        r.entry_time, r.exit_time, r.total_cost, r.status`

const detailJoins = ` FROM reservations r
	 JOIN parking_spots s ON s.id = r.spot_id
	 JOIN parking_lots l ON l.id = s.lot_id`

func scanDetails(rows *sql.Rows) ([]ReservationDetail, error) {
	var out []ReservationDetail
	for rows.Next() {
		var d ReservationDetail
		var exit sql.NullTime
		if err := rows.Scan(&d.ID, &d.SpotID, &d.SpotNumber, &d.LotID, &d.LotName,
			&d.HourlyRate, &d.EntryTime, &exit, &d.TotalCost, &d.Status); err != nil {
			return nil, err
		}
		if exit.Valid {
			t := exit.Time
			d.ExitTime = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListActiveByUser returns the user's ACTIVE reservations together
// with spot and lot details.  The schema allows at most one but the
// method returns a slice so the dashboard renders uniformly.
func (r *ReservationRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+detailColumns+detailJoins+`
		 WHERE r.user_id = ? AND r.status = 'ACTIVE'
		 ORDER BY r.entry_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// ListCompletedByUser returns the user's most recent COMPLETED
// reservations, newest first, capped at limit.
func (r *ReservationRepo) ListCompletedByUser(ctx context.Context, userID uint64, limit int) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+detailColumns+detailJoins+`
		 WHERE r.user_id = ? AND r.status = 'COMPLETED'
		 ORDER BY r.exit_time DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// SpotOccupant identifies who currently holds a spot.  Used by the
// admin per-lot spot listing to show reservation details on occupied
// spots.
type SpotOccupant struct {
	SpotID        uint64
	ReservationID uint64
	UserID        uint64
	UserEmail     string
	EntryTime     time.Time
}

// ActiveBySpots returns the ACTIVE reservation keyed by spot ID for
// every occupied spot in the lot.
func (r *ReservationRepo) ActiveBySpots(ctx context.Context, lotID uint64) (map[uint64]SpotOccupant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.spot_id, r.id, r.user_id, u.email, r.entry_time
		 FROM reservations r
		 JOIN parking_spots s ON s.id = r.spot_id
		 JOIN users u ON u.id = r.user_id
		 WHERE s.lot_id = ? AND r.status = 'ACTIVE'`, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]SpotOccupant)
	for rows.Next() {
		var o SpotOccupant
		if err := rows.Scan(&o.SpotID, &o.ReservationID, &o.UserID, &o.UserEmail, &o.EntryTime); err != nil {
			return nil, err
		}
		out[o.SpotID] = o
	}
	return out, rows.Err()
}
