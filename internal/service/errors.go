// Package service implements the reservation lifecycle and capacity
// enforcement engine together with the review/rating service. It contains
// every business rule of the system; handlers only translate HTTP requests
// into service calls and service errors into status codes.
package service

import "errors"

// Policy violations. These are expected, recoverable outcomes that are
// surfaced to the caller as-is, never retried or swallowed. Not-found
// and uniqueness conflicts are reported with the repository package's
// sentinel errors instead.

// ErrReservationLateTime is returned when a same-day reservation is
// requested with less than the minimum lead time before the slot.
var ErrReservationLateTime = errors.New("reservation is too close to the requested time")

// ErrCapacityOver is returned when a reservation would push the store's
// visitor total for the slot's calendar date past its capacity.
var ErrCapacityOver = errors.New("reservation exceeds store capacity")

// ErrVisitTimeOver is returned when a member arrives later than the visit
// window allows. The reservation has already been moved to REJECTION by
// the time this error is returned; callers must not treat it as retryable.
var ErrVisitTimeOver = errors.New("visit recorded after the allowed window")

// ErrMemberUnmatched is returned when the visiting member is not the
// member who made the reservation.
var ErrMemberUnmatched = errors.New("visitor does not match the reservation member")

// ErrDateUnmatched is returned when a visit is recorded on a different
// calendar date than the reservation's slot.
var ErrDateUnmatched = errors.New("visit date does not match the reservation date")

// ErrReviewNotAllowed is returned when a member without a qualifying
// visit attempts to create or update a review.
var ErrReviewNotAllowed = errors.New("member has no qualifying visit at this store")
