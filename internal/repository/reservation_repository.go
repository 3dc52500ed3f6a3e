package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/store-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. The
// capacity invariant (visitors booked for a store on one calendar date
// never exceed the store's capacity) is enforced here at write time:
// Create and Amend lock the store row with SELECT ... FOR UPDATE, re-read
// the visitor sum for the slot's date inside the same transaction and
// refuse the write with ErrCapacityExceeded when it would oversell. The
// service layer performs the same check in advance under a per-store
// mutex; the transactional re-check makes the invariant hold even when
// several replicas share one database. All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = "id, store_id, member_id, visitor_num, reservation_date, status, is_visited, created_at, updated_at"

func scanReservation(row interface{ Scan(...any) error }, res *model.Reservation) error {
	return row.Scan(&res.ID, &res.StoreID, &res.MemberID, &res.VisitorNum,
		&res.ReservationDate, &res.Status, &res.IsVisited, &res.CreatedAt, &res.UpdatedAt)
}

// Create inserts a new reservation after re-validating uniqueness and
// capacity under the store row lock. On success the generated ID and
// timestamp fields are populated on the provided record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	capacity, err := lockStoreCapacity(ctx, tx, res.StoreID)
	if err != nil {
		return err
	}

	// Duplicate (member, store, slot) triple check under the lock.
	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM reservations WHERE member_id = ? AND store_id = ? AND reservation_date = ? LIMIT 1",
		res.MemberID, res.StoreID, res.ReservationDate).Scan(&existing)
	if err == nil {
		return ErrDuplicateReservation
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	sum, err := sumVisitorsTx(ctx, tx, res.StoreID, res.ReservationDate, 0)
	if err != nil {
		return err
	}
	if sum+res.VisitorNum > capacity {
		return ErrCapacityExceeded
	}

	const qInsert = `INSERT INTO reservations (store_id, member_id, visitor_num, reservation_date, status, is_visited)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, qInsert,
		res.StoreID, res.MemberID, res.VisitorNum, res.ReservationDate, res.Status, res.IsVisited)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	// Query back the full row to populate timestamps and defaults.
	const qSelect = "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	if err := scanReservation(tx.QueryRowContext(ctx, qSelect, res.ID), res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Amend persists changed visitor_num / reservation_date / status fields of
// an existing reservation. Uniqueness and capacity are re-checked for the
// (possibly new) slot under the store row lock: the amended reservation
// may not land on a slot where the member already holds another row, and
// the visitor sum excludes the amended reservation's previous contribution
// so growing a party only fails when the growth itself does not fit.
func (r *ReservationRepo) Amend(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	capacity, err := lockStoreCapacity(ctx, tx, res.StoreID)
	if err != nil {
		return err
	}

	// Duplicate (member, store, slot) triple check under the lock,
	// skipping the row being amended.
	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM reservations WHERE member_id = ? AND store_id = ? AND reservation_date = ? AND id <> ? LIMIT 1",
		res.MemberID, res.StoreID, res.ReservationDate, res.ID).Scan(&existing)
	if err == nil {
		return ErrDuplicateReservation
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	sum, err := sumVisitorsTx(ctx, tx, res.StoreID, res.ReservationDate, res.ID)
	if err != nil {
		return err
	}
	if sum+res.VisitorNum > capacity {
		return ErrCapacityExceeded
	}

	const q = `UPDATE reservations
	           SET visitor_num = ?, reservation_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, res.VisitorNum, res.ReservationDate, res.Status, res.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// lockStoreCapacity reads capacity_person under FOR UPDATE so concurrent
// writers for the same store serialize on the row lock.
func lockStoreCapacity(ctx context.Context, tx *sql.Tx, storeID uint64) (int, error) {
	var capacity int
	err := tx.QueryRowContext(ctx,
		"SELECT capacity_person FROM stores WHERE id = ? FOR UPDATE", storeID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrStoreNotFound
		}
		return 0, err
	}
	return capacity, nil
}

// sumVisitorsTx sums visitor_num over the store's live reservations whose
// slot falls on the same calendar date as `at`. Rows of any status count;
// a rejected party's seats stay reserved until the row is deleted or
// amended. excludeID skips the reservation under amendment.
func sumVisitorsTx(ctx context.Context, tx *sql.Tx, storeID uint64, at time.Time, excludeID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(visitor_num), 0)
	           FROM reservations
	           WHERE store_id = ? AND DATE(reservation_date) = DATE(?) AND id <> ?`
	var sum int
	if err := tx.QueryRowContext(ctx, q, storeID, at, excludeID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// SumVisitors is the advisory (non-locking) variant used by the service
// layer to report capacity violations before attempting the write.
func (r *ReservationRepo) SumVisitors(ctx context.Context, storeID uint64, at time.Time, excludeID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(visitor_num), 0)
	           FROM reservations
	           WHERE store_id = ? AND DATE(reservation_date) = DATE(?) AND id <> ?`
	var sum int
	if err := r.db.QueryRowContext(ctx, q, storeID, at, excludeID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// GetByID fetches a single reservation. Returns ErrReservationNotFound
// when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindBySlot looks up the unique reservation for a (member, store, slot)
// triple. Returns ErrReservationNotFound when no such reservation exists.
func (r *ReservationRepo) FindBySlot(ctx context.Context, memberID, storeID uint64, at time.Time) (*model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
	           WHERE member_id = ? AND store_id = ? AND reservation_date = ? LIMIT 1`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, memberID, storeID, at), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindByMemberAndStore returns the member's most recent reservation at the
// store. It backs the review-eligibility check.
func (r *ReservationRepo) FindByMemberAndStore(ctx context.Context, memberID, storeID uint64) (*model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
	           WHERE member_id = ? AND store_id = ?
	           ORDER BY reservation_date DESC LIMIT 1`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, memberID, storeID), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ListByStore returns reservations for a store ordered by slot time,
// optionally restricted to a single calendar date. The result is a
// snapshot, not a live view.
func (r *ReservationRepo) ListByStore(ctx context.Context, storeID uint64, day *time.Time) ([]model.Reservation, error) {
	q := "SELECT " + reservationColumns + " FROM reservations WHERE store_id = ?"
	args := []any{storeID}
	if day != nil {
		q += " AND DATE(reservation_date) = DATE(?)"
		args = append(args, *day)
	}
	q += " ORDER BY reservation_date, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByMember returns all reservations made by a member, newest first.
func (r *ReservationRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
	           WHERE member_id = ? ORDER BY reservation_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus updates only the status column. Used for confirm/reject and
// for the late-visit rejection side effect; no capacity check applies
// because the party size and slot stay as they were.
func (r *ReservationRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// MarkVisited records an on-time arrival: CONFIRMATION plus the visited flag.
func (r *ReservationRepo) MarkVisited(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reservations SET status = ?, is_visited = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		model.StatusConfirmation, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// Delete removes the reservation row. No cascading side effects.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
