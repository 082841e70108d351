package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/shared/dateindex"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("listings: not found")
	ErrConcurrentUpdate = errors.New("listings: concurrent update detected")
	ErrIDRequired       = errors.New("listings: id is required")
	ErrHostRequired     = errors.New("listings: host is required")
	ErrTitleRequired    = errors.New("listings: title is required")
	ErrGuestsLimit      = errors.New("listings: guests limit must be at least 1")
	ErrNightlyRate      = errors.New("listings: nightly rate must be positive")
	ErrInvalidType      = errors.New("listings: unknown listing type")
)

type ListingID string

type ListingType string

const (
	TypeApartment ListingType = "APARTMENT"
	TypeHouse     ListingType = "HOUSE"
)

// Listing is the bookable resource. It owns the availability index: the index
// is a denormalized cache of the listing's bookings and must stay re-derivable
// from them. Version guards the conditional write that serializes concurrent
// reservation attempts.
type Listing struct {
	ID          ListingID
	Host        string
	Title       string
	Description string
	Type        ListingType
	PhotoURL    string
	Address     string
	City        string
	Country     string
	GuestsLimit int
	NightlyRate money.Money
	Index       dateindex.Index
	BookingIDs  []string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	// Save persists the listing conditionally on Version: if another writer
	// committed in between, it fails with ErrConcurrentUpdate and nothing is
	// written. On success the in-memory Version is bumped.
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
}

type SearchParams struct {
	City          string
	Country       string
	PriceMinCents int64
	PriceMaxCents int64
	Limit         int
	Offset        int
}

type CreateParams struct {
	ID          ListingID
	Host        string
	Title       string
	Description string
	Type        ListingType
	PhotoURL    string
	Address     string
	City        string
	Country     string
	GuestsLimit int
	NightlyRate money.Money
	Now         time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.Host) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.GuestsLimit < 1 {
		return nil, ErrGuestsLimit
	}
	if !params.NightlyRate.IsPositive() {
		return nil, ErrNightlyRate
	}
	switch params.Type {
	case TypeApartment, TypeHouse:
	default:
		return nil, ErrInvalidType
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	l := &Listing{
		ID:          params.ID,
		Host:        strings.TrimSpace(params.Host),
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Type:        params.Type,
		PhotoURL:    strings.TrimSpace(params.PhotoURL),
		Address:     strings.TrimSpace(params.Address),
		City:        strings.TrimSpace(params.City),
		Country:     strings.TrimSpace(params.Country),
		GuestsLimit: params.GuestsLimit,
		NightlyRate: params.NightlyRate,
		Index:       dateindex.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.Record(ListingCreated{ListingID: l.ID, HostID: l.Host, At: now})
	return l, nil
}

// AttachBooking swaps in the merged availability snapshot and records the
// booking reference. The caller must have produced mergedIndex from this
// listing's current Index; the repository's version check rejects the write
// if that snapshot went stale.
func (l *Listing) AttachBooking(bookingID string, mergedIndex dateindex.Index, now time.Time) {
	l.Index = mergedIndex
	l.BookingIDs = append(l.BookingIDs, bookingID)
	l.UpdatedAt = now.UTC()
}
