package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

type reviewEnv struct {
	members      *fakeMembers
	stores       *fakeStores
	reservations *fakeReservations
	reviews      *fakeReviews
	resSvc       *ReservationService
	svc          *ReviewService
}

// newReviewEnv wires the review service against a real reservation
// service so the visit gate runs the same code production does.
func newReviewEnv(t *testing.T) *reviewEnv {
	t.Helper()
	env := &reviewEnv{
		members:      newFakeMembers(),
		stores:       newFakeStores(),
		reservations: newFakeReservations(),
		reviews:      newFakeReviews(),
	}
	env.resSvc = NewReservationService(env.members, env.stores, env.reservations)
	env.resSvc.now = func() time.Time { return testClock }
	env.svc = NewReviewService(env.members, env.stores, env.reviews, env.resSvc)
	return env
}

// visit books and records a visit so memberID qualifies for a review.
func (env *reviewEnv) visit(t *testing.T, memberID, storeID uint64) {
	t.Helper()
	ctx := context.Background()
	res, err := env.resSvc.Create(ctx, memberID, storeID, 2, testClock.Add(15*time.Minute))
	require.NoError(t, err)
	_, err = env.resSvc.RecordVisit(ctx, res.ID, memberID)
	require.NoError(t, err)
}

func TestCreateReviewAfterVisit(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	env.visit(t, 1, 10)

	rv, err := env.svc.Create(context.Background(), 1, 10, "great food", 4.5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, rv.Rating)
	assert.Equal(t, "great food", rv.Content)

	// The store rating follows immediately.
	assert.InDelta(t, 4.5, env.stores.rating(10), 1e-9)
}

func TestCreateReviewWithoutReservation(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)

	_, err := env.svc.Create(context.Background(), 1, 10, "never went", 5.0)
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestCreateReviewAfterLapsedReservation(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	_, err := env.resSvc.Create(ctx, 1, 10, 2, testClock.Add(2*time.Hour))
	require.NoError(t, err)

	// The slot passed without a recorded visit.
	env.resSvc.now = func() time.Time { return testClock.AddDate(0, 0, 2) }
	_, err = env.svc.Create(ctx, 1, 10, "no show", 5.0)
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestCreateReviewUpcomingReservationQualifies(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	_, err := env.resSvc.Create(ctx, 1, 10, 2, testClock.AddDate(0, 0, 2))
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, 1, 10, "booked for friday", 4.0)
	assert.NoError(t, err)
}

func TestCreateReviewDuplicate(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	env.visit(t, 1, 10)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, 1, 10, "first", 4.0)
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, 1, 10, "second", 2.0)
	assert.ErrorIs(t, err, repository.ErrDuplicateReview)
}

func TestStoreRatingIsMeanOfReviews(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.members.add(3, model.RoleUser)
	env.stores.add(10, 20)
	env.visit(t, 1, 10)
	env.visit(t, 2, 10)
	env.visit(t, 3, 10)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, 1, 10, "ok", 2.5)
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, 2, 10, "fine", 3.5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, env.stores.rating(10), 1e-9)

	_, err = env.svc.Create(ctx, 3, 10, "loved it", 5.0)
	require.NoError(t, err)
	assert.InDelta(t, (2.5+3.5+5.0)/3, env.stores.rating(10), 1e-9)
}

func TestRecomputeRatingIdempotent(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	env.visit(t, 1, 10)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, 1, 10, "ok", 4.0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := env.svc.RecomputeRating(ctx, 10)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, got, 1e-9)
	}
	assert.InDelta(t, 4.0, env.stores.rating(10), 1e-9)
}

func TestRecomputeRatingEmptyStore(t *testing.T) {
	env := newReviewEnv(t)
	env.stores.add(10, 20)

	got, err := env.svc.RecomputeRating(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = env.svc.RecomputeRating(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrStoreNotFound)
}

func TestUpdateReview(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	env.visit(t, 1, 10)
	ctx := context.Background()

	rv, err := env.svc.Create(ctx, 1, 10, "ok", 2.0)
	require.NoError(t, err)

	// A content-only edit leaves the derived rating alone.
	before := env.stores.ratingWrites()
	content := "actually quite good"
	got, err := env.svc.Update(ctx, rv.ID, ReviewPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, before, env.stores.ratingWrites())

	// Changing the score recomputes.
	rating := 5.0
	got, err = env.svc.Update(ctx, rv.ID, ReviewPatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating)
	assert.InDelta(t, 5.0, env.stores.rating(10), 1e-9)
}

func TestDeleteReviewKeepsRating(t *testing.T) {
	env := newReviewEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	env.visit(t, 1, 10)
	ctx := context.Background()

	rv, err := env.svc.Create(ctx, 1, 10, "ok", 4.0)
	require.NoError(t, err)
	require.InDelta(t, 4.0, env.stores.rating(10), 1e-9)

	require.NoError(t, env.svc.Delete(ctx, rv.ID))

	// Deletion does not touch the stored aggregate.
	assert.InDelta(t, 4.0, env.stores.rating(10), 1e-9)
	_, err = env.svc.GetByID(ctx, rv.ID)
	assert.ErrorIs(t, err, repository.ErrReviewNotFound)
}

func TestReviewNotFound(t *testing.T) {
	env := newReviewEnv(t)
	ctx := context.Background()

	_, err := env.svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrReviewNotFound)

	rating := 3.0
	_, err = env.svc.Update(ctx, 1, ReviewPatch{Rating: &rating})
	assert.ErrorIs(t, err, repository.ErrReviewNotFound)

	assert.ErrorIs(t, env.svc.Delete(ctx, 1), repository.ErrReviewNotFound)
}
