package dto

import (
	"time"

	"stayhub/internal/domain/booking"
)

type BookingView struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	TenantID   string    `json:"tenantId"`
	CheckIn    string    `json:"checkIn"`
	CheckOut   string    `json:"checkOut"`
	TotalCents int64     `json:"totalCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}

const dateLayout = "2006-01-02"

func BookingToView(b *booking.Booking) BookingView {
	return BookingView{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		TenantID:   string(b.TenantID),
		CheckIn:    b.CheckIn.UTC().Format(dateLayout),
		CheckOut:   b.CheckOut.UTC().Format(dateLayout),
		TotalCents: b.Total.Amount,
		Currency:   b.Total.Currency,
		CreatedAt:  b.CreatedAt,
	}
}

func BookingsToView(items []*booking.Booking) []BookingView {
	views := make([]BookingView, 0, len(items))
	for _, b := range items {
		views = append(views, BookingToView(b))
	}
	return views
}
