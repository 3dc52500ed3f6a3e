// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when an owner confirms a
// reservation. It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	MemberID        uint64 `json:"member_id"`
	StoreID         uint64 `json:"store_id"`
	StoreName       string `json:"store_name"`
	VisitorNum      int    `json:"visitor_num"`
	ReservationDate string `json:"reservation_date"`
	ConfirmedAt     string `json:"confirmed_at"`
}
