package booking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/payments"
	"stayhub/internal/infra/storage/memory"
)

type fixture struct {
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	users    *memory.UserRepository
	gateway  *payments.MemoryGateway
	outbox   *memory.Outbox
	handler  *CreateBookingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		listings: memory.NewListingRepository(),
		bookings: memory.NewBookingRepository(),
		users:    memory.NewUserRepository(),
		gateway:  payments.NewMemoryGateway(),
		outbox:   memory.NewOutbox(),
	}
	f.handler = &CreateBookingHandler{
		UoWFactory: memory.Factory{
			ListingsRepo: f.listings,
			BookingsRepo: f.bookings,
			UsersRepo:    f.users,
		},
		Payments: f.gateway,
		Outbox:   f.outbox,
		Now:      func() time.Time { return time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) seedUser(t *testing.T, id, wallet string) *domainuser.User {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Name:         id,
		PasswordHash: "hashed",
		WalletID:     wallet,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
	return u
}

func (f *fixture) seedListing(t *testing.T, id, host string, rateCents int64) *domainlisting.Listing {
	t.Helper()
	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID:          domainlisting.ListingID(id),
		Host:        host,
		Title:       "Harbor loft",
		Type:        domainlisting.TypeApartment,
		City:        "Lisbon",
		Country:     "Portugal",
		GuestsLimit: 2,
		NightlyRate: money.Must(rateCents, money.DefaultCurrency),
	})
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, f.listings.Save(context.Background(), l))
	return l
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "host-1", "wallet-1")
	f.seedUser(t, "tenant-1", "")
	f.seedListing(t, "listing-1", "host-1", 10000)

	res, err := f.handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "listing-1",
		TenantID:  "tenant-1",
		Source:    "tok-visa",
		CheckIn:   day(2024, 3, 1),
		CheckOut:  day(2024, 3, 3),
	})
	require.NoError(t, err)
	require.Equal(t, "bk-1", res.BookingID)
	// three billed days, endpoints inclusive
	require.Equal(t, int64(30000), res.TotalCents)
	require.Equal(t, "USD", res.Currency)

	charges := f.gateway.Charges()
	require.Len(t, charges, 1)
	require.Equal(t, int64(30000), charges[0].Amount.Amount)
	require.Equal(t, "wallet-1", charges[0].Payee)

	stored, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Equal(t, domainlisting.ListingID("listing-1"), stored.ListingID)

	listing, err := f.listings.ByID(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Equal(t, 3, listing.Index.Len())
	require.True(t, listing.Index.Booked(day(2024, 3, 1)))
	require.True(t, listing.Index.Booked(day(2024, 3, 3)))
	require.Equal(t, []string{"bk-1"}, listing.BookingIDs)

	host, err := f.users.ByID(context.Background(), "host-1")
	require.NoError(t, err)
	require.Equal(t, int64(30000), host.Income.Amount)

	tenant, err := f.users.ByID(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Equal(t, []string{"bk-1"}, tenant.BookingIDs)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, "booking.created", pending[0].Name)
}

func TestCreateBookingPaymentFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "host-1", "wallet-1")
	f.seedUser(t, "tenant-1", "")
	f.seedListing(t, "listing-1", "host-1", 10000)
	f.gateway.FailWith(errors.New("card declined"))

	_, err := f.handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "listing-1",
		TenantID:  "tenant-1",
		Source:    "tok-visa",
		CheckIn:   day(2024, 3, 1),
		CheckOut:  day(2024, 3, 3),
	})
	require.ErrorIs(t, err, ErrPaymentFailed)

	_, err = f.bookings.ByID(context.Background(), "bk-1")
	require.ErrorIs(t, err, domainbooking.ErrNotFound)

	listing, err := f.listings.ByID(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Zero(t, listing.Index.Len())
	require.Empty(t, listing.BookingIDs)

	host, err := f.users.ByID(context.Background(), "host-1")
	require.NoError(t, err)
	require.Zero(t, host.Income.Amount)
}

func TestCreateBookingOverlapRejectedBeforeCharge(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "host-1", "wallet-1")
	f.seedUser(t, "tenant-1", "")
	f.seedUser(t, "tenant-2", "")
	f.seedListing(t, "listing-1", "host-1", 10000)

	_, err := f.handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "listing-1",
		TenantID:  "tenant-1",
		Source:    "tok-visa",
		CheckIn:   day(2024, 3, 1),
		CheckOut:  day(2024, 3, 5),
	})
	require.NoError(t, err)

	_, err = f.handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-2",
		ListingID: "listing-1",
		TenantID:  "tenant-2",
		Source:    "tok-mc",
		CheckIn:   day(2024, 3, 5),
		CheckOut:  day(2024, 3, 7),
	})
	var rangeErr domainbooking.RangeError
	require.ErrorAs(t, err, &rangeErr)
	require.Equal(t, domainbooking.RangeOverlap, rangeErr.Reason)

	// the second tenant was never charged
	require.Len(t, f.gateway.Charges(), 1)
}

func TestCreateBookingPolicyRejections(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "host-1", "wallet-1")
	f.seedUser(t, "host-2", "")
	f.seedUser(t, "tenant-1", "")
	f.seedListing(t, "listing-1", "host-1", 10000)
	f.seedListing(t, "listing-2", "host-2", 10000)

	cases := []struct {
		name   string
		cmd    CreateBookingCommand
		reason domainbooking.PolicyReason
	}{
		{
			name: "host booking own listing",
			cmd: CreateBookingCommand{
				CommandID: "bk-1", ListingID: "listing-1", TenantID: "host-1",
				Source: "tok", CheckIn: day(2024, 3, 1), CheckOut: day(2024, 3, 3),
			},
			reason: domainbooking.PolicySelfBooking,
		},
		{
			name: "host has no wallet",
			cmd: CreateBookingCommand{
				CommandID: "bk-2", ListingID: "listing-2", TenantID: "tenant-1",
				Source: "tok", CheckIn: day(2024, 3, 1), CheckOut: day(2024, 3, 3),
			},
			reason: domainbooking.PolicyPayeeIneligible,
		},
		{
			name: "checkin beyond horizon",
			cmd: CreateBookingCommand{
				CommandID: "bk-3", ListingID: "listing-1", TenantID: "tenant-1",
				Source: "tok", CheckIn: day(2024, 8, 1), CheckOut: day(2024, 8, 3),
			},
			reason: domainbooking.PolicyCheckInTooFar,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.handler.Handle(context.Background(), tc.cmd)
			var policyErr domainbooking.PolicyError
			require.ErrorAs(t, err, &policyErr)
			require.Equal(t, tc.reason, policyErr.Reason)
		})
	}
	require.Empty(t, f.gateway.Charges())
}

// gatedGateway blocks each Charge until both racers have read the listing,
// forcing the write race the version check must resolve.
type gatedGateway struct {
	inner   *payments.MemoryGateway
	barrier *sync.WaitGroup
}

func (g *gatedGateway) Charge(ctx context.Context, amount money.Money, source, payee string) error {
	g.barrier.Done()
	g.barrier.Wait()
	return g.inner.Charge(ctx, amount, source, payee)
}

func TestCreateBookingConcurrentRaceSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "host-1", "wallet-1")
	f.seedUser(t, "tenant-1", "")
	f.seedUser(t, "tenant-2", "")
	f.seedListing(t, "listing-1", "host-1", 10000)

	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	f.handler.Payments = &gatedGateway{inner: f.gateway, barrier: barrier}

	type outcome struct {
		res *CreateBookingResult
		err error
	}
	results := make(chan outcome, 2)
	run := func(cmdID, tenant string) {
		res, err := f.handler.Handle(context.Background(), CreateBookingCommand{
			CommandID: cmdID,
			ListingID: "listing-1",
			TenantID:  tenant,
			Source:    "tok-" + tenant,
			CheckIn:   day(2024, 3, 1),
			CheckOut:  day(2024, 3, 4),
		})
		results <- outcome{res: res, err: err}
	}
	go run("bk-1", "tenant-1")
	go run("bk-2", "tenant-2")

	var wins, conflicts int
	for i := 0; i < 2; i++ {
		out := <-results
		if out.err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, out.err, ErrConcurrentConflict)
		conflicts++
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, conflicts)

	listing, err := f.listings.ByID(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Equal(t, 4, listing.Index.Len())
	require.Len(t, listing.BookingIDs, 1)
}

func TestCreateBookingTenantAttachFailureLogsReconciliation(t *testing.T) {
	f := newFixture(t)
	var logs bytes.Buffer
	f.handler.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	f.seedUser(t, "host-1", "wallet-1")
	tenant := f.seedUser(t, "tenant-1", "")
	f.seedListing(t, "listing-1", "host-1", 10000)

	// The tenant already references the booking ID, so the attach after the
	// charge and the listing/booking/host writes must fail.
	require.NoError(t, tenant.AttachBooking("bk-1", time.Now()))
	require.NoError(t, f.users.Save(context.Background(), tenant))

	_, err := f.handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "listing-1",
		TenantID:  "tenant-1",
		Source:    "tok-visa",
		CheckIn:   day(2024, 3, 1),
		CheckOut:  day(2024, 3, 3),
	})
	require.ErrorIs(t, err, domainuser.ErrBookingAttached)

	// Money moved before the failure, so the attempt is flagged for manual
	// reconciliation.
	require.Len(t, f.gateway.Charges(), 1)
	require.Contains(t, logs.String(), "reservation needs payment reconciliation")
	require.Contains(t, logs.String(), "tenant booking attach failed")
}

func TestCreateBookingListingMissing(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "tenant-1", "")

	_, err := f.handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "listing-unknown",
		TenantID:  "tenant-1",
		Source:    "tok",
		CheckIn:   day(2024, 3, 1),
		CheckOut:  day(2024, 3, 3),
	})
	require.ErrorIs(t, err, domainlisting.ErrNotFound)
	require.Empty(t, f.gateway.Charges())
}
