package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/domain/shared/dateindex"
)

const createBookingKey = "booking.create"

// DefaultHorizonDays bounds how far ahead a stay may start or end.
const DefaultHorizonDays = 180

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")
	ErrPaymentsRequired   = errors.New("booking: payments port required")
	// ErrConcurrentConflict means another reservation won the race for the same
	// listing between our read and our write. The attempt must be retried from
	// the top against the fresh index.
	ErrConcurrentConflict = errors.New("booking: listing changed concurrently, retry")
	// ErrPaymentFailed wraps charge provider failures; nothing was persisted.
	ErrPaymentFailed = errors.New("booking: payment failed")
)

type CreateBookingCommand struct {
	CommandID       string
	ListingID       string
	TenantID        string
	Source          string // tenant payment source token
	CheckIn         time.Time
	CheckOut        time.Time
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID  string `json:"booking_id"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

// CreateBookingHandler runs the full reservation attempt: policy gate, range
// pre-flight, charge, then the persistence sequence. The charge happens before
// any write; the listing write goes first so a lost concurrency race aborts
// the attempt before booking, host, or tenant documents change.
type CreateBookingHandler struct {
	UoWFactory  uow.UoWFactory
	Payments    policies.PaymentsPort
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
	HorizonDays int
	Now         func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if h.Payments == nil {
		return nil, ErrPaymentsRequired
	}
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.now()

	listing, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	host, err := unit.Users().ByID(ctx, domainuser.ID(listing.Host))
	if err != nil {
		return nil, err
	}

	if err := domainbooking.EvaluatePolicy(domainbooking.PolicyContext{
		TenantID:      cmd.TenantID,
		HostID:        listing.Host,
		HostHasWallet: host.HasWallet(),
		CheckIn:       cmd.CheckIn,
		CheckOut:      cmd.CheckOut,
		Today:         now,
		HorizonDays:   h.horizon(),
	}); err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateRange(listing.Index, cmd.CheckIn, cmd.CheckOut); err != nil {
		return nil, err
	}

	total := listing.NightlyRate.Multiply(int64(dateindex.DaysInclusive(cmd.CheckIn, cmd.CheckOut)))

	// The charge is the point of no return: past here any failure leaves money
	// moved without a booking, so every later error path logs for
	// reconciliation before surfacing.
	if err := h.Payments.Charge(ctx, total, cmd.Source, host.WalletID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	merged, err := listing.Index.Merge(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		h.reconcile(ctx, cmd, "index merge failed after charge", err)
		return nil, err
	}

	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		ListingID: listing.ID,
		TenantID:  domainuser.ID(cmd.TenantID),
		CheckIn:   cmd.CheckIn,
		CheckOut:  cmd.CheckOut,
		Total:     total,
		CreatedAt: now,
	})
	if err != nil {
		h.reconcile(ctx, cmd, "booking construction failed after charge", err)
		return nil, err
	}

	listing.AttachBooking(string(bk.ID), merged, now)
	if err := unit.Listings().Save(ctx, listing); err != nil {
		if errors.Is(err, domainlisting.ErrConcurrentUpdate) {
			h.reconcile(ctx, cmd, "lost listing write race after charge", err)
			return nil, fmt.Errorf("%w: %w", ErrConcurrentConflict, err)
		}
		h.reconcile(ctx, cmd, "listing save failed after charge", err)
		return nil, err
	}

	if err := unit.Bookings().Insert(ctx, bk); err != nil {
		h.reconcile(ctx, cmd, "booking insert failed after listing write", err)
		return nil, err
	}

	if err := host.CreditIncome(total, now); err != nil {
		h.reconcile(ctx, cmd, "host income credit failed", err)
		return nil, err
	}
	if err := unit.Users().Save(ctx, host); err != nil {
		h.reconcile(ctx, cmd, "host save failed", err)
		return nil, err
	}

	tenant, err := unit.Users().ByID(ctx, domainuser.ID(cmd.TenantID))
	if err != nil {
		h.reconcile(ctx, cmd, "tenant load failed after writes", err)
		return nil, err
	}
	if err := tenant.AttachBooking(string(bk.ID), now); err != nil {
		h.reconcile(ctx, cmd, "tenant booking attach failed", err)
		return nil, err
	}
	if err := unit.Users().Save(ctx, tenant); err != nil {
		h.reconcile(ctx, cmd, "tenant save failed", err)
		return nil, err
	}

	evs := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), evs); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateBookingResult{
		BookingID:  string(bk.ID),
		TotalCents: total.Amount,
		Currency:   total.Currency,
	}, nil
}

func (h *CreateBookingHandler) horizon() int {
	if h.HorizonDays > 0 {
		return h.HorizonDays
	}
	return DefaultHorizonDays
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateBookingHandler) reconcile(ctx context.Context, cmd CreateBookingCommand, msg string, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.ErrorContext(ctx, "reservation needs payment reconciliation",
		slog.String("reason", msg),
		slog.String("listing_id", cmd.ListingID),
		slog.String("tenant_id", cmd.TenantID),
		slog.String("command_id", cmd.CommandID),
		slog.Any("error", err),
	)
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
