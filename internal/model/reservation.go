package model

import "time"

// Reservation statuses as stored in the reservations.status column.
// A reservation starts WAITING and is moved to CONFIRMATION or REJECTION
// by the store owner (or by a recorded visit).  Amending a reservation
// returns it to WAITING so the owner must approve it again.
const (
    StatusWaiting      = "WAITING"
    StatusConfirmation = "CONFIRMATION"
    StatusRejection    = "REJECTION"
)

// Reservation records a member's booking of a time slot at a store.
// At most one reservation may exist for a given (member, store, slot)
// triple, and the visitors booked for a store on one calendar date may
// never exceed the store's capacity.
//
// Fields:
//  ID              – primary key identifier.
//  StoreID         – store being reserved.
//  MemberID        – member who made the reservation.
//  VisitorNum      – number of visitors in the party (positive).
//  ReservationDate – date and time of the reserved slot, in UTC.
//  Status          – WAITING, CONFIRMATION or REJECTION.
//  IsVisited       – whether the member's arrival was recorded in time.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
    ID              uint64    // reservations.id
    StoreID         uint64    // reservations.store_id
    MemberID        uint64    // reservations.member_id
    VisitorNum      int       // reservations.visitor_num
    ReservationDate time.Time // reservations.reservation_date
    Status          string    // reservations.status
    IsVisited       bool      // reservations.is_visited
    CreatedAt       time.Time // reservations.created_at
    UpdatedAt       time.Time // reservations.updated_at
}
