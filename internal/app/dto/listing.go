package dto

import (
	"time"

	"stayhub/internal/domain/listing"
)

type ListingView struct {
	ID               string    `json:"id"`
	HostID           string    `json:"hostId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Type             string    `json:"type"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	Country          string    `json:"country"`
	GuestsLimit      int       `json:"guestsLimit"`
	NightlyRateCents int64     `json:"nightlyRateCents"`
	Currency         string    `json:"currency"`
	BookingIDs       []string  `json:"bookingIds,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func ListingToView(l *listing.Listing) ListingView {
	return ListingView{
		ID:               string(l.ID),
		HostID:           l.Host,
		Title:            l.Title,
		Description:      l.Description,
		Type:             string(l.Type),
		PhotoURL:         l.PhotoURL,
		Address:          l.Address,
		City:             l.City,
		Country:          l.Country,
		GuestsLimit:      l.GuestsLimit,
		NightlyRateCents: l.NightlyRate.Amount,
		Currency:         l.NightlyRate.Currency,
		BookingIDs:       l.BookingIDs,
		CreatedAt:        l.CreatedAt,
	}
}

func ListingsToView(items []*listing.Listing) []ListingView {
	views := make([]ListingView, 0, len(items))
	for _, l := range items {
		views = append(views, ListingToView(l))
	}
	return views
}

type CatalogPage struct {
	Total    int           `json:"total"`
	Listings []ListingView `json:"listings"`
}
