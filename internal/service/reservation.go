package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

// leadTime is the minimum interval between "now" and a same-day slot at
// creation time. visitWindow is the interval before the slot within which
// an arrival must be recorded; both are fixed at ten minutes.
const (
	leadTime    = 10 * time.Minute
	visitWindow = 10 * time.Minute
)

// MemberDirectory resolves members by id. Implemented by
// repository.MemberRepo; faked in tests.
type MemberDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Member, error)
}

// StoreDirectory resolves stores by id.
type StoreDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Store, error)
}

// ReservationStore is the persistence surface the engine drives.
// Create and Amend are expected to re-validate capacity atomically (the
// MySQL implementation does so under the store row lock) and to report a
// violation as repository.ErrCapacityExceeded.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	Amend(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	FindBySlot(ctx context.Context, memberID, storeID uint64, at time.Time) (*model.Reservation, error)
	FindByMemberAndStore(ctx context.Context, memberID, storeID uint64) (*model.Reservation, error)
	ListByStore(ctx context.Context, storeID uint64, day *time.Time) ([]model.Reservation, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error)
	SumVisitors(ctx context.Context, storeID uint64, at time.Time, excludeID uint64) (int, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	MarkVisited(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

// ReservationService owns the reservation lifecycle: creation with
// lead-time and capacity validation, owner approval and rejection, visit
// recording with its arrival window, amendment and deletion. All slot
// times are treated as UTC. Capacity is scoped per calendar date: the
// visitors booked for one date count against the store's capacity for
// that date only, so a store can serve more guests across different days
// than a single sitting holds.
type ReservationService struct {
	members      MemberDirectory
	stores       StoreDirectory
	reservations ReservationStore

	locks storeLocks
	now   func() time.Time // injectable for tests
}

// NewReservationService wires the engine to its collaborators. All
// dependencies must be non-nil.
func NewReservationService(members MemberDirectory, stores StoreDirectory, reservations ReservationStore) *ReservationService {
	if members == nil || stores == nil || reservations == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		members:      members,
		stores:       stores,
		reservations: reservations,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ReservationPatch carries the optional fields of an amendment. Nil
// fields are left untouched.
type ReservationPatch struct {
	VisitorNum      *int
	ReservationDate *time.Time
}

// Create validates and inserts a new reservation in WAITING status.
// Preconditions, in order: member and store resolve; same-day slots keep
// the minimum lead time; no reservation exists for the same (member,
// store, slot) triple; the party fits the store's remaining capacity for
// the slot's calendar date (boundary inclusive). The duplicate and
// capacity checks and the insert run under the store's mutex so two
// concurrent requests cannot both pass the check and jointly oversell.
func (s *ReservationService) Create(ctx context.Context, memberID, storeID uint64, visitorNum int, at time.Time) (*model.Reservation, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	at = at.UTC()
	if err := s.checkLeadTime(at); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(storeID)
	defer unlock()

	if _, err := s.reservations.FindBySlot(ctx, memberID, storeID, at); err == nil {
		return nil, repository.ErrDuplicateReservation
	} else if !errors.Is(err, repository.ErrReservationNotFound) {
		return nil, err
	}

	sum, err := s.reservations.SumVisitors(ctx, storeID, at, 0)
	if err != nil {
		return nil, err
	}
	if sum+visitorNum > store.CapacityPerson {
		return nil, ErrCapacityOver
	}

	res := &model.Reservation{
		StoreID:         storeID,
		MemberID:        memberID,
		VisitorNum:      visitorNum,
		ReservationDate: at,
		Status:          model.StatusWaiting,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, ErrCapacityOver
		}
		return nil, err
	}
	return res, nil
}

// checkLeadTime rejects same-day slots closer than leadTime to now.
// Future-dated slots carry no lead-time restriction.
func (s *ReservationService) checkLeadTime(at time.Time) error {
	now := s.now()
	if sameDay(now, at) && at.Before(now.Add(leadTime)) {
		return ErrReservationLateTime
	}
	return nil
}

// GetByID returns a single reservation or repository.ErrReservationNotFound.
func (s *ReservationService) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// ListByStore returns the store's reservations, restricted to one
// calendar date when day is non-nil. The store must resolve.
func (s *ReservationService) ListByStore(ctx context.Context, storeID uint64, day *time.Time) ([]model.Reservation, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.reservations.ListByStore(ctx, storeID, day)
}

// ListByMember returns all of a member's reservations, newest slot first.
func (s *ReservationService) ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	return s.reservations.ListByMember(ctx, memberID)
}

// Confirm moves the reservation to CONFIRMATION. The caller must already
// be authorized as the store owner; no role check happens here.
func (s *ReservationService) Confirm(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.setStatus(ctx, id, model.StatusConfirmation)
}

// Reject moves the reservation to REJECTION.
func (s *ReservationService) Reject(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.setStatus(ctx, id, model.StatusRejection)
}

func (s *ReservationService) setStatus(ctx context.Context, id uint64, status string) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reservations.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	res.Status = status
	return res, nil
}

// RecordVisit registers the member's arrival for a reservation.
// Preconditions, in order: the visiting member equals the reservation's
// member; today equals the slot's calendar date; the arrival is no later
// than visitWindow before the slot. A late arrival moves the reservation
// to REJECTION and then fails with ErrVisitTimeOver; the rejection stays
// persisted even though the call errors. On success the reservation
// becomes CONFIRMATION with the visited flag set.
func (s *ReservationService) RecordVisit(ctx context.Context, id, visitingMemberID uint64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.GetByID(ctx, visitingMemberID); err != nil {
		return nil, err
	}
	if res.MemberID != visitingMemberID {
		return nil, ErrMemberUnmatched
	}

	now := s.now()
	if !sameDay(now, res.ReservationDate) {
		return nil, ErrDateUnmatched
	}
	if now.After(res.ReservationDate.Add(-visitWindow)) {
		if err := s.reservations.SetStatus(ctx, id, model.StatusRejection); err != nil {
			return nil, err
		}
		return nil, ErrVisitTimeOver
	}

	if err := s.reservations.MarkVisited(ctx, id); err != nil {
		return nil, err
	}
	res.Status = model.StatusConfirmation
	res.IsVisited = true
	return res, nil
}

// Update amends a reservation. A new slot re-runs the lead-time check
// and may not collide with another reservation the member already holds
// at the store. The full invariant set is then re-validated against the
// amended values: the capacity check runs for the effective slot date
// with the reservation's own prior contribution excluded from the sum
// (so a party can shrink, grow or move within the remaining room without
// double counting itself). Any amendment resets the status to WAITING
// for re-approval.
func (s *ReservationService) Update(ctx context.Context, id uint64, patch ReservationPatch) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.GetByID(ctx, res.StoreID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(res.StoreID)
	defer unlock()

	if patch.ReservationDate != nil {
		at := patch.ReservationDate.UTC()
		if err := s.checkLeadTime(at); err != nil {
			return nil, err
		}
		existing, err := s.reservations.FindBySlot(ctx, res.MemberID, res.StoreID, at)
		switch {
		case err == nil:
			if existing.ID != res.ID {
				return nil, repository.ErrDuplicateReservation
			}
		case !errors.Is(err, repository.ErrReservationNotFound):
			return nil, err
		}
		res.ReservationDate = at
	}
	if patch.VisitorNum != nil {
		res.VisitorNum = *patch.VisitorNum
	}
	if patch.ReservationDate != nil || patch.VisitorNum != nil {
		sum, err := s.reservations.SumVisitors(ctx, res.StoreID, res.ReservationDate, res.ID)
		if err != nil {
			return nil, err
		}
		if sum+res.VisitorNum > store.CapacityPerson {
			return nil, ErrCapacityOver
		}
	}

	res.Status = model.StatusWaiting
	if err := s.reservations.Amend(ctx, res); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, ErrCapacityOver
		}
		return nil, err
	}
	return res, nil
}

// Delete removes the reservation. No cascading side effects; the store's
// rating is untouched.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.reservations.GetByID(ctx, id); err != nil {
		return err
	}
	return s.reservations.Delete(ctx, id)
}

// HasQualifyingVisit reports whether the member may review the store:
// true when their reservation there was visited, or its slot has not yet
// passed. A member with no reservation at the store gets
// repository.ErrReservationNotFound; callers must treat that as "not
// eligible", not as a fault.
func (s *ReservationService) HasQualifyingVisit(ctx context.Context, memberID, storeID uint64) (bool, error) {
	res, err := s.reservations.FindByMemberAndStore(ctx, memberID, storeID)
	if err != nil {
		return false, err
	}
	return res.IsVisited || !res.ReservationDate.Before(s.now()), nil
}

// sameDay reports whether two instants fall on the same UTC calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
