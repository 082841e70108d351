package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stayhub/internal/app/commands"
	availabilityapp "stayhub/internal/app/handlers/availability"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/middleware"
	appoutbox "stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	authsvc "stayhub/internal/app/services/auth"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
	"stayhub/internal/infra/payments"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
)

type serverFixture struct {
	handler  http.Handler
	auth     *authsvc.Service
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	gateway  *payments.MemoryGateway
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	listings := memory.NewListingRepository()
	bookings := memory.NewBookingRepository()
	users := memory.NewUserRepository()
	factory := memory.Factory{ListingsRepo: listings, BookingsRepo: bookings, UsersRepo: users}
	box := memory.NewOutbox()
	gateway := payments.NewMemoryGateway()
	now := func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	authService := &authsvc.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{},
		Tokens:    security.RandomTokenGenerator{},
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: factory,
		Payments:   gateway,
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        now,
	})
	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: factory,
		Now:        now,
	})

	commandBusMW := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusMW := middleware.ChainQueries(queryBus)

	handlers := Handlers{
		Booking:        BookingHandler{Commands: commandBusMW},
		Availability:   AvailabilityHandler{Queries: queryBusMW},
		Auth:           AuthHandler{Service: authService},
		AuthMiddleware: AuthMiddleware{Service: authService}.Handle,
	}
	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, handlers)

	return &serverFixture{
		handler:  server.Handler,
		auth:     authService,
		listings: listings,
		bookings: bookings,
		gateway:  gateway,
	}
}

func (f *serverFixture) registerUser(t *testing.T, email string, walletID string) (string, string) {
	t.Helper()
	result, err := f.auth.Register(context.Background(), authsvc.RegisterParams{
		Email:    email,
		Name:     "Test User",
		Password: "correct horse",
	})
	require.NoError(t, err)
	if walletID != "" {
		_, err = f.auth.ConnectWallet(context.Background(), result.User.ID, walletID)
		require.NoError(t, err)
	}
	return string(result.User.ID), result.Token
}

func (f *serverFixture) seedListing(t *testing.T, id, hostID string) {
	t.Helper()
	rate, err := money.New(10_000, money.DefaultCurrency)
	require.NoError(t, err)
	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID:          domainlisting.ListingID(id),
		Host:        hostID,
		Title:       "Canal loft",
		Type:        domainlisting.TypeApartment,
		City:        "Amsterdam",
		Country:     "Netherlands",
		GuestsLimit: 2,
		NightlyRate: rate,
		Now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), l))
}

func postBooking(t *testing.T, h http.Handler, token, idemKey string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBookingEndpointCreatesAndReplays(t *testing.T) {
	f := newServerFixture(t)
	hostID, _ := f.registerUser(t, "host@example.com", "wallet-1")
	_, tenantToken := f.registerUser(t, "guest@example.com", "")
	f.seedListing(t, "listing-1", hostID)

	body := map[string]string{
		"listing_id": "listing-1",
		"source":     "tok_visa",
		"check_in":   "2024-03-01",
		"check_out":  "2024-03-03",
	}
	w := postBooking(t, f.handler, tenantToken, "idem-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp bookingapp.CreateBookingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.BookingID)
	require.Equal(t, int64(30_000), resp.TotalCents)

	// Same Idempotency-Key replays the stored result without a second charge.
	w = postBooking(t, f.handler, tenantToken, "idem-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var replay bookingapp.CreateBookingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replay))
	require.Equal(t, resp.BookingID, replay.BookingID)
	require.Len(t, f.gateway.Charges(), 1)
}

func TestBookingEndpointRequiresAuth(t *testing.T) {
	f := newServerFixture(t)
	w := postBooking(t, f.handler, "", "", map[string]string{
		"listing_id": "listing-1",
		"check_in":   "2024-03-01",
		"check_out":  "2024-03-03",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingEndpointMapsOverlapTo422(t *testing.T) {
	f := newServerFixture(t)
	hostID, _ := f.registerUser(t, "host@example.com", "wallet-1")
	_, tenantToken := f.registerUser(t, "guest@example.com", "")
	f.seedListing(t, "listing-1", hostID)

	w := postBooking(t, f.handler, tenantToken, "", map[string]string{
		"listing_id": "listing-1",
		"source":     "tok_visa",
		"check_in":   "2024-03-01",
		"check_out":  "2024-03-05",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postBooking(t, f.handler, tenantToken, "", map[string]string{
		"listing_id": "listing-1",
		"source":     "tok_visa",
		"check_in":   "2024-03-04",
		"check_out":  "2024-03-06",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestBookingEndpointRejectsBadDate(t *testing.T) {
	f := newServerFixture(t)
	_, tenantToken := f.registerUser(t, "guest@example.com", "")
	w := postBooking(t, f.handler, tenantToken, "", map[string]string{
		"listing_id": "listing-1",
		"check_in":   "not-a-date",
		"check_out":  "2024-03-03",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarEndpointListsBlockedDays(t *testing.T) {
	f := newServerFixture(t)
	hostID, _ := f.registerUser(t, "host@example.com", "wallet-1")
	_, tenantToken := f.registerUser(t, "guest@example.com", "")
	f.seedListing(t, "listing-1", hostID)

	w := postBooking(t, f.handler, tenantToken, "", map[string]string{
		"listing_id": "listing-1",
		"source":     "tok_visa",
		"check_in":   "2024-03-01",
		"check_out":  "2024-03-03",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/listing-1/calendar?from=2024-02-28&to=2024-03-05", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cal struct {
		BlockedDays []string `json:"blockedDays"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cal))
	require.Contains(t, cal.BlockedDays, "2024-03-01")
	require.Contains(t, cal.BlockedDays, "2024-03-02")
	require.Contains(t, cal.BlockedDays, "2024-03-03")
	require.NotContains(t, cal.BlockedDays, "2024-03-04")
}
