package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

var (
	// ErrBookingExists is returned when inserting a booking id twice.
	ErrBookingExists = errors.New("memory: booking already exists")
)

// ListingRepository keeps listings in memory with the same optimistic
// concurrency contract as the mongo implementation: Save only succeeds when
// the caller holds the current version, and bumps it on success.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ListingID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlisting.ListingID]*domainlisting.Listing),
	}
}

// ByID returns an independent snapshot so callers can mutate freely before Save.
func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return cloneListing(l), nil
}

// Save performs a compare-and-swap on Version. A mismatch means another
// writer committed since the caller's read; nothing is written then.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlisting.Listing) error {
	if listing == nil {
		return domainlisting.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[listing.ID]
	if ok && existing.Version != listing.Version {
		return domainlisting.ErrConcurrentUpdate
	}
	listing.Version++
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) ([]*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainlisting.Listing, 0, len(r.items))
	for _, l := range r.items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if params.City != "" && !strings.EqualFold(l.City, params.City) {
			continue
		}
		if params.Country != "" && !strings.EqualFold(l.Country, params.Country) {
			continue
		}
		if params.PriceMinCents > 0 && l.NightlyRate.Amount < params.PriceMinCents {
			continue
		}
		if params.PriceMaxCents > 0 && l.NightlyRate.Amount > params.PriceMaxCents {
			continue
		}
		matches = append(matches, cloneListing(l))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].NightlyRate.Amount < matches[j].NightlyRate.Amount
	})

	start := params.Offset
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}
	return matches[start:end], nil
}

func cloneListing(l *domainlisting.Listing) *domainlisting.Listing {
	if l == nil {
		return nil
	}
	out := *l
	out.Index = l.Index.Clone()
	out.BookingIDs = append([]string(nil), l.BookingIDs...)
	return &out
}

// BookingRepository stores immutable booking records.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *BookingRepository) Insert(ctx context.Context, booking *domainbooking.Booking) error {
	if booking == nil {
		return domainbooking.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[booking.ID]; ok {
		return ErrBookingExists
	}
	copied := *booking
	r.items[booking.ID] = &copied
	return nil
}

func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID domainuser.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.TenantID != tenantID {
			continue
		}
		copied := *b
		matches = append(matches, &copied)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
var _ domainbooking.Repository = (*BookingRepository)(nil)
