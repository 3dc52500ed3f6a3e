package service

import (
	"context"
	"errors"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

// StoreRatingStore extends store resolution with write access to the
// derived rating column.
type StoreRatingStore interface {
	StoreDirectory
	UpdateRating(ctx context.Context, id uint64, rating float64) error
}

// ReviewStore is the persistence surface for reviews.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	GetByID(ctx context.Context, id uint64) (*model.Review, error)
	FindByMemberAndStore(ctx context.Context, memberID, storeID uint64) (*model.Review, error)
	ListByStore(ctx context.Context, storeID uint64) ([]model.Review, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.Review, error)
	AverageRating(ctx context.Context, storeID uint64) (float64, error)
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id uint64) error
}

// VisitChecker gates review writes on a completed (or still upcoming)
// reservation. Implemented by ReservationService.
type VisitChecker interface {
	HasQualifyingVisit(ctx context.Context, memberID, storeID uint64) (bool, error)
}

// ReviewService owns review creation, amendment and the derived store
// rating. Every review creation and every rating edit recomputes the
// store's rating synchronously; the rating column never lags its
// reviews. Review deletion does not recompute.
type ReviewService struct {
	members MemberDirectory
	stores  StoreRatingStore
	reviews ReviewStore
	visits  VisitChecker
}

func NewReviewService(members MemberDirectory, stores StoreRatingStore, reviews ReviewStore, visits VisitChecker) *ReviewService {
	if members == nil || stores == nil || reviews == nil || visits == nil {
		panic("nil dependency passed to NewReviewService")
	}
	return &ReviewService{members: members, stores: stores, reviews: reviews, visits: visits}
}

// ReviewPatch carries the optional fields of a review update.
type ReviewPatch struct {
	Content *string
	Rating  *float64
}

// Create validates and inserts a review, then recomputes the store's
// rating. The member must have a qualifying visit at the store and must
// not have reviewed it already.
func (s *ReviewService) Create(ctx context.Context, memberID, storeID uint64, content string, rating float64) (*model.Review, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	if err := s.requireQualifyingVisit(ctx, memberID, storeID); err != nil {
		return nil, err
	}
	if _, err := s.reviews.FindByMemberAndStore(ctx, memberID, storeID); err == nil {
		return nil, repository.ErrDuplicateReview
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, err
	}

	rv := &model.Review{
		StoreID:  storeID,
		MemberID: memberID,
		Content:  content,
		Rating:   rating,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	if _, err := s.RecomputeRating(ctx, storeID); err != nil {
		return nil, err
	}
	return rv, nil
}

// requireQualifyingVisit maps "no reservation at all" to the same policy
// error as "reservation without a qualifying visit".
func (s *ReviewService) requireQualifyingVisit(ctx context.Context, memberID, storeID uint64) error {
	ok, err := s.visits.HasQualifyingVisit(ctx, memberID, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return ErrReviewNotAllowed
		}
		return err
	}
	if !ok {
		return ErrReviewNotAllowed
	}
	return nil
}

// GetByID returns a review or repository.ErrReviewNotFound.
func (s *ReviewService) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// ListByStore returns all reviews for a store. The store must resolve.
func (s *ReviewService) ListByStore(ctx context.Context, storeID uint64) ([]model.Review, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.reviews.ListByStore(ctx, storeID)
}

// ListByMember returns all reviews written by a member.
func (s *ReviewService) ListByMember(ctx context.Context, memberID uint64) ([]model.Review, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.reviews.ListByMember(ctx, memberID)
}

// Update amends a review's content and/or rating. The author must still
// hold a qualifying visit. A rating change recomputes the store rating;
// a content-only change does not.
func (s *ReviewService) Update(ctx context.Context, id uint64, patch ReviewPatch) (*model.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireQualifyingVisit(ctx, rv.MemberID, rv.StoreID); err != nil {
		return nil, err
	}

	ratingChanged := false
	if patch.Content != nil {
		rv.Content = *patch.Content
	}
	if patch.Rating != nil {
		rv.Rating = *patch.Rating
		ratingChanged = true
	}
	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, err
	}
	if ratingChanged {
		if _, err := s.RecomputeRating(ctx, rv.StoreID); err != nil {
			return nil, err
		}
	}
	return rv, nil
}

// Delete removes a review. The store rating keeps its last computed
// value; only review creation and rating edits refresh it.
func (s *ReviewService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.reviews.GetByID(ctx, id); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, id)
}

// RecomputeRating recalculates the store's mean review rating and writes
// it to the store record, returning the applied value. With no reviews
// the rating is 0.0. The operation is idempotent and safe to re-run.
func (s *ReviewService) RecomputeRating(ctx context.Context, storeID uint64) (float64, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return 0, err
	}
	avg, err := s.reviews.AverageRating(ctx, storeID)
	if err != nil {
		return 0, err
	}
	if err := s.stores.UpdateRating(ctx, storeID, avg); err != nil {
		return 0, err
	}
	return avg, nil
}
