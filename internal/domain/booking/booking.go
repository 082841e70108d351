package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/domain/user"
)

var (
	ErrNotFound       = errors.New("booking: not found")
	ErrIDRequired     = errors.New("booking: id is required")
	ErrTenantRequired = errors.New("booking: tenant id is required")
	ErrTotalInvalid   = errors.New("booking: total must be positive")
)

type BookingID string

// Booking is an immutable record of one tenant reserving one listing for an
// inclusive range of calendar days. Cancellation is not modeled; bookings are
// created exactly once and never mutated.
type Booking struct {
	ID        BookingID
	ListingID listing.ListingID
	TenantID  user.ID
	CheckIn   time.Time
	CheckOut  time.Time
	Total     money.Money
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Insert(ctx context.Context, booking *Booking) error
	ListByTenant(ctx context.Context, tenantID user.ID) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listing.ListingID
	TenantID  user.ID
	CheckIn   time.Time
	CheckOut  time.Time
	Total     money.Money
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.TenantID)) == "" {
		return nil, ErrTenantRequired
	}
	if !params.Total.IsPositive() {
		return nil, ErrTotalInvalid
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		TenantID:  params.TenantID,
		CheckIn:   params.CheckIn.UTC(),
		CheckOut:  params.CheckOut.UTC(),
		Total:     params.Total,
		CreatedAt: now,
	}
	b.Record(BookingCreated{
		BookingID: b.ID,
		ListingID: b.ListingID,
		TenantID:  b.TenantID,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		Total:     b.Total,
		At:        now,
	})
	return b, nil
}
