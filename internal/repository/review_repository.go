package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/store-reservation/internal/model"
)

// ReviewRepo provides persistence for store reviews. One review per
// (member, store) pair; the mean rating per store feeds the derived
// stores.rating column via the review service.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = "id, store_id, member_id, content, rating, created_at, updated_at"

func scanReview(row interface{ Scan(...any) error }, rv *model.Review) error {
	return row.Scan(&rv.ID, &rv.StoreID, &rv.MemberID, &rv.Content, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt)
}

// Create inserts a review. A duplicate (member, store) pair returns
// ErrDuplicateReview. On success the ID and timestamps are populated.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	var existing uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM reviews WHERE member_id = ? AND store_id = ? LIMIT 1",
		rv.MemberID, rv.StoreID).Scan(&existing)
	if err == nil {
		return ErrDuplicateReview
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (store_id, member_id, content, rating) VALUES (?, ?, ?, ?)",
		rv.StoreID, rv.MemberID, rv.Content, rv.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)

	const qSelect = "SELECT " + reviewColumns + " FROM reviews WHERE id = ?"
	return scanReview(r.db.QueryRowContext(ctx, qSelect, rv.ID), rv)
}

// GetByID fetches a review by id. Returns ErrReviewNotFound when absent.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	const q = "SELECT " + reviewColumns + " FROM reviews WHERE id = ?"
	var rv model.Review
	if err := scanReview(r.db.QueryRowContext(ctx, q, id), &rv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// FindByMemberAndStore returns the member's review of the store, or
// ErrReviewNotFound.
func (r *ReviewRepo) FindByMemberAndStore(ctx context.Context, memberID, storeID uint64) (*model.Review, error) {
	const q = "SELECT " + reviewColumns + " FROM reviews WHERE member_id = ? AND store_id = ? LIMIT 1"
	var rv model.Review
	if err := scanReview(r.db.QueryRowContext(ctx, q, memberID, storeID), &rv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// ListByStore returns all reviews for a store, newest first.
func (r *ReviewRepo) ListByStore(ctx context.Context, storeID uint64) ([]model.Review, error) {
	const q = "SELECT " + reviewColumns + " FROM reviews WHERE store_id = ? ORDER BY id DESC"
	return r.list(ctx, q, storeID)
}

// ListByMember returns all reviews written by a member, newest first.
func (r *ReviewRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Review, error) {
	const q = "SELECT " + reviewColumns + " FROM reviews WHERE member_id = ? ORDER BY id DESC"
	return r.list(ctx, q, memberID)
}

func (r *ReviewRepo) list(ctx context.Context, q string, args ...any) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := scanReview(rows, &rv); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageRating returns the arithmetic mean of the store's review ratings,
// or 0.0 when the store has no reviews.
func (r *ReviewRepo) AverageRating(ctx context.Context, storeID uint64) (float64, error) {
	const q = "SELECT COALESCE(AVG(rating), 0.0) FROM reviews WHERE store_id = ?"
	var avg float64
	if err := r.db.QueryRowContext(ctx, q, storeID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// Update persists content/rating changes to an existing review.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET content = ?, rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		rv.Content, rv.Rating, rv.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete removes a review. Deletion does not trigger a rating recompute.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
