package model

import "time"

// Store represents a bookable venue owned by a member.  Each store has a
// finite per-sitting capacity and a derived rating maintained by the
// review service.  This struct corresponds to a row in the `stores` table.
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – member ID of the store owner.
//  Name           – store name, unique per owner.
//  Address        – street address of the store.
//  CapacityPerson – maximum number of visitors a single calendar date can hold.
//  Rating         – arithmetic mean of the store's review ratings (0.0 when none).
//  Latitude       – latitude of the store location.
//  Longitude      – longitude of the store location.
//  CreatedAt      – timestamp when the store was created.
//  UpdatedAt      – timestamp of last update.
type Store struct {
    ID             uint64    // stores.id
    OwnerID        uint64    // stores.owner_id
    Name           string    // stores.name
    Address        string    // stores.address
    CapacityPerson int       // stores.capacity_person
    Rating         float64   // stores.rating (derived, never edited directly)
    Latitude       float64   // stores.latitude
    Longitude      float64   // stores.longitude
    CreatedAt      time.Time // stores.created_at
    UpdatedAt      time.Time // stores.updated_at
}
