// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. Anything not covered by a sentinel is
// an internal storage fault and is surfaced to the caller unchanged.
package repository

import "errors"

// ErrMemberNotFound is returned when no member row matches the lookup.
var ErrMemberNotFound = errors.New("member not found")

// ErrStoreNotFound is returned when no store row matches the lookup.
var ErrStoreNotFound = errors.New("store not found")

// ErrReservationNotFound is returned when no reservation row matches the lookup.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrReviewNotFound is returned when no review row matches the lookup.
var ErrReviewNotFound = errors.New("review not found")

// ErrEmailExists is returned when registering a member with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrStoreExists is returned when an owner already has a store with the
// same name.
var ErrStoreExists = errors.New("store already exists for this owner")

// ErrDuplicateReservation is returned when a reservation with the same
// (member, store, slot) triple already exists.
var ErrDuplicateReservation = errors.New("reservation already exists")

// ErrDuplicateReview is returned when the member already reviewed the store.
var ErrDuplicateReview = errors.New("review already exists")

// ErrCapacityExceeded is returned when an insert or amendment would push
// the visitor sum for a store's calendar date past its capacity. The
// repository re-checks capacity while holding the store row lock, so this
// error is authoritative even across concurrent replicas.
var ErrCapacityExceeded = errors.New("store capacity exceeded")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")
