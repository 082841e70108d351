package booking

import (
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/domain/user"
)

type BookingCreated struct {
	BookingID BookingID         `json:"booking_id"`
	ListingID listing.ListingID `json:"listing_id"`
	TenantID  user.ID           `json:"tenant_id"`
	CheckIn   time.Time         `json:"check_in"`
	CheckOut  time.Time         `json:"check_out"`
	Total     money.Money       `json:"total"`
	At        time.Time         `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }
