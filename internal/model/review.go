package model

import "time"

// Review is a member's rating of a store they have visited.  A member may
// leave at most one review per store.  Every rating write triggers a
// recompute of the store's aggregate rating.
type Review struct {
    ID        uint64    // reviews.id
    StoreID   uint64    // reviews.store_id
    MemberID  uint64    // reviews.member_id
    Content   string    // reviews.content
    Rating    float64   // reviews.rating
    CreatedAt time.Time // reviews.created_at
    UpdatedAt time.Time // reviews.updated_at
}
