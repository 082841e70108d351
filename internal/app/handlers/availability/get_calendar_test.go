package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/storage/memory"
)

func seedListing(t *testing.T, repo *memory.ListingRepository) *domainlisting.Listing {
	t.Helper()
	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID:          "listing-1",
		Host:        "host-1",
		Title:       "Canal house",
		Type:        domainlisting.TypeHouse,
		GuestsLimit: 4,
		NightlyRate: money.Must(12000, money.DefaultCurrency),
	})
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), l))
	return l
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
}

func TestGetCalendarBlocksPastBookedAndHorizon(t *testing.T) {
	listings := memory.NewListingRepository()
	l := seedListing(t, listings)

	merged, err := l.Index.Merge(
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	l.Index = merged
	require.NoError(t, listings.Save(context.Background(), l))

	handler := &GetCalendarHandler{
		UoWFactory: memory.Factory{
			ListingsRepo: listings,
			BookingsRepo: memory.NewBookingRepository(),
			UsersRepo:    memory.NewUserRepository(),
		},
		HorizonDays: 30,
		Now:         fixedNow,
	}

	cal, err := handler.Handle(context.Background(), GetCalendarQuery{
		ListingID: "listing-1",
		From:      time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	blocked := make(map[string]struct{}, len(cal.BlockedDays))
	for _, d := range cal.BlockedDays {
		blocked[d] = struct{}{}
	}

	// on or before the current day
	require.Contains(t, blocked, "2024-01-09")
	require.Contains(t, blocked, "2024-01-10")
	require.NotContains(t, blocked, "2024-01-11")

	// booked stay
	require.Contains(t, blocked, "2024-01-15")
	require.Contains(t, blocked, "2024-01-16")
	require.Contains(t, blocked, "2024-01-17")
	require.NotContains(t, blocked, "2024-01-18")

	// horizon is 30 days past the current day
	require.NotContains(t, blocked, "2024-02-09")
	require.Contains(t, blocked, "2024-02-10")
	require.Contains(t, blocked, "2024-02-12")
}

func TestIsDateBlocked(t *testing.T) {
	listings := memory.NewListingRepository()
	seedListing(t, listings)

	handler := &IsDateBlockedHandler{
		UoWFactory: memory.Factory{
			ListingsRepo: listings,
			BookingsRepo: memory.NewBookingRepository(),
			UsersRepo:    memory.NewUserRepository(),
		},
		HorizonDays: 30,
		Now:         fixedNow,
	}

	free, err := handler.Handle(context.Background(), IsDateBlockedQuery{
		ListingID: "listing-1",
		Date:      time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.False(t, free.Blocked)

	past, err := handler.Handle(context.Background(), IsDateBlockedQuery{
		ListingID: "listing-1",
		Date:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, past.Blocked)

	missing, err := handler.Handle(context.Background(), IsDateBlockedQuery{
		ListingID: "listing-404",
		Date:      time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, domainlisting.ErrNotFound)
	require.False(t, missing.Blocked)
}
