package listing

import "time"

type ListingCreated struct {
	ListingID ListingID `json:"listing_id"`
	HostID    string    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }
