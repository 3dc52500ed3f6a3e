package service

// In-memory fakes backing the engine tests. They mirror the repository
// contracts, including the sentinel errors, but perform no capacity
// checks of their own: the tests exercise the service's enforcement.

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

type fakeMembers struct {
	mu      sync.Mutex
	members map[uint64]*model.Member
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{members: make(map[uint64]*model.Member)}
}

func (f *fakeMembers) add(id uint64, role string) *model.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &model.Member{ID: id, Role: role, IsActive: true}
	f.members[id] = m
	return m
}

func (f *fakeMembers) GetByID(_ context.Context, id uint64) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	return m, nil
}

type fakeStores struct {
	mu               sync.Mutex
	stores           map[uint64]*model.Store
	ratingWriteCount int
}

func newFakeStores() *fakeStores {
	return &fakeStores{stores: make(map[uint64]*model.Store)}
}

func (f *fakeStores) add(id uint64, capacity int) *model.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &model.Store{ID: id, OwnerID: 1, CapacityPerson: capacity}
	f.stores[id] = s
	return s
}

func (f *fakeStores) GetByID(_ context.Context, id uint64) (*model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[id]
	if !ok {
		return nil, repository.ErrStoreNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStores) UpdateRating(_ context.Context, id uint64, rating float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[id]
	if !ok {
		return repository.ErrStoreNotFound
	}
	s.Rating = rating
	f.ratingWriteCount++
	return nil
}

func (f *fakeStores) rating(id uint64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stores[id].Rating
}

func (f *fakeStores) ratingWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ratingWriteCount
}

type fakeReservations struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{rows: make(map[uint64]*model.Reservation)}
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservations) Amend(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[res.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) FindBySlot(_ context.Context, memberID, storeID uint64, at time.Time) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.MemberID == memberID && r.StoreID == storeID && r.ReservationDate.Equal(at) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReservationNotFound
}

func (f *fakeReservations) FindByMemberAndStore(_ context.Context, memberID, storeID uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.Reservation
	for _, r := range f.rows {
		if r.MemberID != memberID || r.StoreID != storeID {
			continue
		}
		if latest == nil || r.ReservationDate.After(latest.ReservationDate) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repository.ErrReservationNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeReservations) ListByStore(_ context.Context, storeID uint64, day *time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range f.rows {
		if r.StoreID != storeID {
			continue
		}
		if day != nil && !sameDay(r.ReservationDate, *day) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReservationDate.Equal(out[j].ReservationDate) {
			return out[i].ReservationDate.Before(out[j].ReservationDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeReservations) ListByMember(_ context.Context, memberID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range f.rows {
		if r.MemberID == memberID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservations) SumVisitors(_ context.Context, storeID uint64, at time.Time, excludeID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, r := range f.rows {
		if r.StoreID == storeID && r.ID != excludeID && sameDay(r.ReservationDate, at) {
			sum += r.VisitorNum
		}
	}
	return sum, nil
}

func (f *fakeReservations) SetStatus(_ context.Context, id uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeReservations) MarkVisited(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.Status = model.StatusConfirmation
	r.IsVisited = true
	return nil
}

func (f *fakeReservations) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeReviews struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{rows: make(map[uint64]*model.Review)}
}

func (f *fakeReviews) Create(_ context.Context, rv *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rv.ID = f.nextID
	cp := *rv
	f.rows[rv.ID] = &cp
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, id uint64) (*model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviews) FindByMemberAndStore(_ context.Context, memberID, storeID uint64) (*model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rv := range f.rows {
		if rv.MemberID == memberID && rv.StoreID == storeID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (f *fakeReviews) ListByStore(_ context.Context, storeID uint64) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Review, 0)
	for _, rv := range f.rows {
		if rv.StoreID == storeID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListByMember(_ context.Context, memberID uint64) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Review, 0)
	for _, rv := range f.rows {
		if rv.MemberID == memberID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (f *fakeReviews) AverageRating(_ context.Context, storeID uint64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, n := 0.0, 0
	for _, rv := range f.rows {
		if rv.StoreID == storeID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeReviews) Update(_ context.Context, rv *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[rv.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	cp := *rv
	f.rows[rv.ID] = &cp
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(f.rows, id)
	return nil
}
