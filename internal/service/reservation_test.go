package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

// testClock is the fixed "now" every reservation test runs against:
// a Tuesday at noon UTC, far from any midnight boundary.
var testClock = time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

type resEnv struct {
	members      *fakeMembers
	stores       *fakeStores
	reservations *fakeReservations
	svc          *ReservationService
}

func newResEnv(t *testing.T) *resEnv {
	t.Helper()
	env := &resEnv{
		members:      newFakeMembers(),
		stores:       newFakeStores(),
		reservations: newFakeReservations(),
	}
	env.svc = NewReservationService(env.members, env.stores, env.reservations)
	env.svc.now = func() time.Time { return testClock }
	return env
}

func TestCreateReservation(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)

	at := testClock.Add(2 * time.Hour)
	res, err := env.svc.Create(context.Background(), 1, 10, 4, at)
	require.NoError(t, err)

	assert.Equal(t, model.StatusWaiting, res.Status)
	assert.False(t, res.IsVisited)
	assert.Equal(t, 4, res.VisitorNum)
	assert.True(t, res.ReservationDate.Equal(at))
}

func TestCreateReservationUnknownMemberOrStore(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	at := testClock.Add(2 * time.Hour)

	_, err := env.svc.Create(context.Background(), 99, 10, 2, at)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)

	_, err = env.svc.Create(context.Background(), 1, 99, 2, at)
	assert.ErrorIs(t, err, repository.ErrStoreNotFound)
}

func TestCreateReservationDuplicateSlot(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	at := testClock.Add(2 * time.Hour)

	_, err := env.svc.Create(context.Background(), 1, 10, 2, at)
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), 1, 10, 2, at)
	assert.ErrorIs(t, err, repository.ErrDuplicateReservation)
}

func TestCreateReservationLeadTime(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	// Five minutes out is inside the same-day cutoff.
	_, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(5*time.Minute))
	assert.ErrorIs(t, err, ErrReservationLateTime)

	// Fifteen minutes out clears it.
	_, err = env.svc.Create(ctx, 1, 10, 2, testClock.Add(15*time.Minute))
	assert.NoError(t, err)
}

func TestCreateReservationLeadTimeOnlySameDay(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	env.svc.now = func() time.Time {
		return time.Date(2025, 3, 11, 23, 57, 0, 0, time.UTC)
	}

	// Seven minutes ahead, but past midnight: the cutoff does not apply
	// to a different calendar date.
	at := time.Date(2025, 3, 12, 0, 4, 0, 0, time.UTC)
	_, err := env.svc.Create(context.Background(), 1, 10, 2, at)
	assert.NoError(t, err)
}

func TestCreateReservationCapacityBoundary(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.members.add(3, model.RoleUser)
	env.stores.add(10, 10)
	ctx := context.Background()
	at := testClock.Add(2 * time.Hour)

	_, err := env.svc.Create(ctx, 1, 10, 6, at)
	require.NoError(t, err)

	// 6 + 5 exceeds 10.
	_, err = env.svc.Create(ctx, 2, 10, 5, at)
	assert.ErrorIs(t, err, ErrCapacityOver)

	// 6 + 4 fills the store exactly and is allowed.
	_, err = env.svc.Create(ctx, 3, 10, 4, at)
	assert.NoError(t, err)
}

func TestCreateReservationCapacityScopedToDate(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.stores.add(10, 10)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, 1, 10, 8, testClock.Add(2*time.Hour))
	require.NoError(t, err)

	// A different day has its own budget.
	_, err = env.svc.Create(ctx, 2, 10, 8, testClock.AddDate(0, 0, 1))
	assert.NoError(t, err)
}

func TestCreateReservationConcurrent(t *testing.T) {
	env := newResEnv(t)
	env.stores.add(10, 10)
	for i := uint64(1); i <= 20; i++ {
		env.members.add(i, model.RoleUser)
	}
	at := testClock.Add(2 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Create(context.Background(), uint64(i+1), 10, 1, at)
		}(i)
	}
	wg.Wait()

	accepted, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case assert.ErrorIs(t, err, ErrCapacityOver):
			rejected++
		}
	}
	assert.Equal(t, 10, accepted)
	assert.Equal(t, 10, rejected)

	sum, err := env.reservations.SumVisitors(context.Background(), 10, at, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, sum)
}

func TestConfirmAndReject(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(2*time.Hour))
	require.NoError(t, err)

	got, err := env.svc.Confirm(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmation, got.Status)

	got, err = env.svc.Reject(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejection, got.Status)

	_, err = env.svc.Confirm(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}

func TestRecordVisitOnTime(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	// Fifteen minutes before the slot: inside the arrival window.
	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(15*time.Minute))
	require.NoError(t, err)

	got, err := env.svc.RecordVisit(ctx, res.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.IsVisited)
	assert.Equal(t, model.StatusConfirmation, got.Status)
}

func TestRecordVisitTooLate(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	at := testClock.Add(2 * time.Hour)
	res, err := env.svc.Create(ctx, 1, 10, 2, at)
	require.NoError(t, err)

	// Five minutes before the slot is past the arrival cutoff. The
	// rejection must survive even though the call fails.
	env.svc.now = func() time.Time { return at.Add(-5 * time.Minute) }
	_, err = env.svc.RecordVisit(ctx, res.ID, 1)
	assert.ErrorIs(t, err, ErrVisitTimeOver)

	stored, err := env.svc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejection, stored.Status)
	assert.False(t, stored.IsVisited)
}

func TestRecordVisitWrongMember(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(15*time.Minute))
	require.NoError(t, err)

	_, err = env.svc.RecordVisit(ctx, res.ID, 2)
	assert.ErrorIs(t, err, ErrMemberUnmatched)
}

func TestRecordVisitWrongDate(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.AddDate(0, 0, 1))
	require.NoError(t, err)

	_, err = env.svc.RecordVisit(ctx, res.ID, 1)
	assert.ErrorIs(t, err, ErrDateUnmatched)
}

func TestUpdateResetsApproval(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = env.svc.Confirm(ctx, res.ID)
	require.NoError(t, err)

	n := 3
	got, err := env.svc.Update(ctx, res.ID, ReservationPatch{VisitorNum: &n})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, got.Status)
	assert.Equal(t, 3, got.VisitorNum)
}

func TestUpdateExcludesOwnHeadcount(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.stores.add(10, 10)
	ctx := context.Background()
	at := testClock.Add(2 * time.Hour)

	res, err := env.svc.Create(ctx, 1, 10, 6, at)
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, 2, 10, 3, at)
	require.NoError(t, err)

	// Growing from 6 to 7 leaves 3 + 7 = 10: the old headcount must not
	// be double counted.
	n := 7
	_, err = env.svc.Update(ctx, res.ID, ReservationPatch{VisitorNum: &n})
	assert.NoError(t, err)

	n = 8
	_, err = env.svc.Update(ctx, res.ID, ReservationPatch{VisitorNum: &n})
	assert.ErrorIs(t, err, ErrCapacityOver)
}

func TestUpdateDateChecksLeadTime(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(2*time.Hour))
	require.NoError(t, err)

	tooSoon := testClock.Add(5 * time.Minute)
	_, err = env.svc.Update(ctx, res.ID, ReservationPatch{ReservationDate: &tooSoon})
	assert.ErrorIs(t, err, ErrReservationLateTime)

	later := testClock.Add(3 * time.Hour)
	got, err := env.svc.Update(ctx, res.ID, ReservationPatch{ReservationDate: &later})
	require.NoError(t, err)
	assert.True(t, got.ReservationDate.Equal(later))
}

func TestUpdateDateChecksCapacity(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.stores.add(10, 10)
	ctx := context.Background()
	day1 := testClock.Add(24 * time.Hour)
	day2 := testClock.Add(48 * time.Hour)

	_, err := env.svc.Create(ctx, 1, 10, 8, day1)
	require.NoError(t, err)
	res2, err := env.svc.Create(ctx, 2, 10, 8, day2)
	require.NoError(t, err)

	// Moving the second party onto day1 would book 16 of 10 seats.
	_, err = env.svc.Update(ctx, res2.ID, ReservationPatch{ReservationDate: &day1})
	assert.ErrorIs(t, err, ErrCapacityOver)

	sum, err := env.reservations.SumVisitors(ctx, 10, day1, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, sum)

	kept, err := env.svc.GetByID(ctx, res2.ID)
	require.NoError(t, err)
	assert.True(t, kept.ReservationDate.Equal(day2))
}

func TestUpdateDateToOccupiedSlot(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()
	slotA := testClock.Add(24 * time.Hour)
	slotB := testClock.Add(26 * time.Hour)

	_, err := env.svc.Create(ctx, 1, 10, 2, slotA)
	require.NoError(t, err)
	resB, err := env.svc.Create(ctx, 1, 10, 2, slotB)
	require.NoError(t, err)

	// The member already holds slotA; moving resB there would duplicate
	// the (member, store, slot) triple.
	_, err = env.svc.Update(ctx, resB.ID, ReservationPatch{ReservationDate: &slotA})
	assert.ErrorIs(t, err, repository.ErrDuplicateReservation)

	// Re-submitting the reservation's own slot is not a collision.
	n := 3
	got, err := env.svc.Update(ctx, resB.ID, ReservationPatch{ReservationDate: &slotB, VisitorNum: &n})
	require.NoError(t, err)
	assert.True(t, got.ReservationDate.Equal(slotB))
	assert.Equal(t, 3, got.VisitorNum)
}

func TestListByStoreFiltersByDate(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.stores.add(10, 20)
	env.stores.add(11, 20)
	ctx := context.Background()
	day1Late := testClock.Add(26 * time.Hour)
	day1Early := testClock.Add(25 * time.Hour)
	day2 := testClock.Add(49 * time.Hour)

	resLate, err := env.svc.Create(ctx, 1, 10, 2, day1Late)
	require.NoError(t, err)
	resEarly, err := env.svc.Create(ctx, 2, 10, 2, day1Early)
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, 1, 10, 2, day2)
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, 1, 11, 2, day1Early)
	require.NoError(t, err)

	all, err := env.svc.ListByStore(ctx, 10, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Restricting to day1 drops the day2 row and the other store's row,
	// and orders by slot time regardless of insertion order.
	items, err := env.svc.ListByStore(ctx, 10, &day1Late)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, resEarly.ID, items[0].ID)
	assert.Equal(t, resLate.ID, items[1].ID)

	_, err = env.svc.ListByStore(ctx, 99, nil)
	assert.ErrorIs(t, err, repository.ErrStoreNotFound)
}

func TestDeleteReservation(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(2*time.Hour))
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, res.ID))
	_, err = env.svc.GetByID(ctx, res.ID)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.ErrorIs(t, env.svc.Delete(ctx, res.ID), repository.ErrReservationNotFound)
}

func TestHasQualifyingVisit(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.members.add(3, model.RoleUser)
	env.stores.add(10, 20)
	ctx := context.Background()

	// Member 1 visited.
	res, err := env.svc.Create(ctx, 1, 10, 2, testClock.Add(15*time.Minute))
	require.NoError(t, err)
	_, err = env.svc.RecordVisit(ctx, res.ID, 1)
	require.NoError(t, err)

	ok, err := env.svc.HasQualifyingVisit(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	// Member 2 holds a future booking: still qualifying.
	_, err = env.svc.Create(ctx, 2, 10, 2, testClock.AddDate(0, 0, 2))
	require.NoError(t, err)
	ok, err = env.svc.HasQualifyingVisit(ctx, 2, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	// Member 3 let a booking lapse without showing up.
	res3, err := env.svc.Create(ctx, 3, 10, 2, testClock.Add(2*time.Hour))
	require.NoError(t, err)
	env.svc.now = func() time.Time { return testClock.AddDate(0, 0, 3) }
	ok, err = env.svc.HasQualifyingVisit(ctx, 3, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	_ = res3

	// No reservation at all is an error, not a quiet false.
	_, err = env.svc.HasQualifyingVisit(ctx, 99, 10)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}

// TestReservationLifecycle walks one store through a full day: bookings
// up to capacity, an owner decision, and a missed arrival window.
func TestReservationLifecycle(t *testing.T) {
	env := newResEnv(t)
	env.members.add(1, model.RoleUser)
	env.members.add(2, model.RoleUser)
	env.members.add(3, model.RoleUser)
	env.stores.add(10, 10)
	ctx := context.Background()
	at := testClock.Add(2 * time.Hour)

	first, err := env.svc.Create(ctx, 1, 10, 6, at)
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, 2, 10, 5, at)
	require.ErrorIs(t, err, ErrCapacityOver)

	_, err = env.svc.Create(ctx, 3, 10, 4, at)
	require.NoError(t, err)

	confirmed, err := env.svc.Confirm(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmation, confirmed.Status)

	// Showing up eight minutes before the slot misses the cutoff.
	env.svc.now = func() time.Time { return at.Add(-8 * time.Minute) }
	_, err = env.svc.RecordVisit(ctx, first.ID, 1)
	require.ErrorIs(t, err, ErrVisitTimeOver)

	stored, err := env.svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusRejection, stored.Status)
	require.False(t, stored.IsVisited)
}
