// This file defines repository methods for store CRUD and lookup
// operations. A store is a venue with a finite per-date visitor capacity
// and a derived rating column maintained by the review service. Public
// listing queries support ordering by name and by rating; distance
// ordering is computed by the handler because it depends on the caller's
// location.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/store-reservation/internal/model"
)

// StoreRepo encapsulates all database queries related to stores. It
// depends on a sql.DB connection which should be configured elsewhere.
type StoreRepo struct {
	db *sql.DB
}

// NewStoreRepo constructs a StoreRepo with the provided DB handle. This
// allows dependency injection of the database in tests and at startup.
func NewStoreRepo(db *sql.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

const storeColumns = "id, owner_id, name, address, capacity_person, rating, latitude, longitude, created_at, updated_at"

func scanStore(row interface{ Scan(...any) error }, s *model.Store) error {
	return row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Address, &s.CapacityPerson,
		&s.Rating, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new store. The (owner_id, name) pair must be unique;
// a duplicate insert returns ErrStoreExists. On success the store's ID,
// rating default and timestamp fields are populated from the database.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	// Application-level uniqueness check first so the error is precise even
	// without the unique index in place.
	const qDup = "SELECT id FROM stores WHERE owner_id = ? AND name = ? LIMIT 1"
	var existing uint64
	err := r.db.QueryRowContext(ctx, qDup, s.OwnerID, s.Name).Scan(&existing)
	if err == nil {
		return ErrStoreExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	const qInsert = `INSERT INTO stores (owner_id, name, address, capacity_person, rating, latitude, longitude)
	                 VALUES (?, ?, ?, ?, 0.0, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, s.OwnerID, s.Name, s.Address, s.CapacityPerson, s.Latitude, s.Longitude)
	if err != nil {
		if strings.Contains(err.Error(), "1062") { // racing duplicate insert
			return ErrStoreExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	// Follow-up SELECT to populate defaults (rating, created_at, updated_at).
	const qSelect = "SELECT " + storeColumns + " FROM stores WHERE id = ?"
	return scanStore(r.db.QueryRowContext(ctx, qSelect, s.ID), s)
}

// GetByID fetches a store by its ID regardless of owner. It returns
// ErrStoreNotFound if no row is found.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (*model.Store, error) {
	const q = "SELECT " + storeColumns + " FROM stores WHERE id = ?"
	var s model.Store
	if err := scanStore(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByOwner returns all stores for a specific owner ordered by id.
func (r *StoreRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Store, error) {
	const q = "SELECT " + storeColumns + " FROM stores WHERE owner_id = ? ORDER BY id"
	return r.list(ctx, q, ownerID)
}

// ListAll returns every store ordered by id. Used for public browsing and
// for distance sorting, which happens in the handler.
func (r *StoreRepo) ListAll(ctx context.Context) ([]*model.Store, error) {
	const q = "SELECT " + storeColumns + " FROM stores ORDER BY id"
	return r.list(ctx, q)
}

// ListByName returns every store in alphabetical name order.
func (r *StoreRepo) ListByName(ctx context.Context) ([]*model.Store, error) {
	const q = "SELECT " + storeColumns + " FROM stores ORDER BY name"
	return r.list(ctx, q)
}

// ListByRating returns every store ordered by rating, best first.
func (r *StoreRepo) ListByRating(ctx context.Context) ([]*model.Store, error) {
	const q = "SELECT " + storeColumns + " FROM stores ORDER BY rating DESC, id"
	return r.list(ctx, q)
}

func (r *StoreRepo) list(ctx context.Context, q string, args ...any) ([]*model.Store, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Store, 0)
	for rows.Next() {
		s := new(model.Store)
		if err := scanStore(rows, s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies name/address/capacity changes to a store if it belongs
// to the provided owner. It returns ErrStoreNotFound when the store does
// not exist and ErrForbidden when it is owned by someone else.
func (r *StoreRepo) Update(ctx context.Context, id, ownerID uint64, name, address string, capacityPerson int) (*model.Store, error) {
	var dbOwnerID uint64
	if err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM stores WHERE id = ?", id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if dbOwnerID != ownerID {
		return nil, ErrForbidden
	}
	const q = `UPDATE stores
	           SET name = ?, address = ?, capacity_person = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, name, address, capacityPerson, id); err != nil {
		if strings.Contains(err.Error(), "1062") { // duplicate (owner_id, name)
			return nil, ErrStoreExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateRating writes the derived rating column. It is invoked by the
// review service after every review create and rating edit; the value is
// stored unrounded.
func (r *StoreRepo) UpdateRating(ctx context.Context, id uint64, rating float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE stores SET rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", rating, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStoreNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a store together with its reservations and
// reviews, provided it belongs to the specified owner. The deletion runs
// inside a transaction to keep the dependent tables consistent.
func (r *StoreRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, "SELECT owner_id FROM stores WHERE id = ?", id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrStoreNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		err = ErrForbidden
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM reservations WHERE store_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM reviews WHERE store_id = ?", id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM stores WHERE id = ?", id)
	return err
}
