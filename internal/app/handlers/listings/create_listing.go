package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

const createListingKey = "listings.create"

var ErrUnitOfWorkRequired = errors.New("listings: unit of work required")

type CreateListingCommand struct {
	HostID           string
	Title            string
	Description      string
	Type             string
	PhotoURL         string
	Address          string
	City             string
	Country          string
	GuestsLimit      int
	NightlyRateCents int64
	Currency         string
}

func (c CreateListingCommand) Key() string { return createListingKey }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	// Currency prices listings whose create request carries no currency.
	Currency string
	Now      func() time.Time
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.ListingView, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, domainlisting.ErrHostRequired
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

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	rate, err := money.New(cmd.NightlyRateCents, h.currency(cmd.Currency))
	if err != nil {
		return nil, err
	}

	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID:          domainlisting.ListingID(uuid.NewString()),
		Host:        cmd.HostID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Type:        domainlisting.ListingType(strings.ToUpper(strings.TrimSpace(cmd.Type))),
		PhotoURL:    cmd.PhotoURL,
		Address:     cmd.Address,
		City:        cmd.City,
		Country:     cmd.Country,
		GuestsLimit: cmd.GuestsLimit,
		NightlyRate: rate,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}

	host, err := unit.Users().ByID(ctx, domainuser.ID(cmd.HostID))
	if err != nil {
		return nil, err
	}
	host.AttachListing(string(l.ID), now)
	if err := unit.Users().Save(ctx, host); err != nil {
		return nil, err
	}

	evs := l.PendingEvents()
	l.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), evs); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", l.ID, "host_id", cmd.HostID)
	}

	view := dto.ListingToView(l)
	return &view, nil
}

func (h *CreateListingHandler) currency(requested string) string {
	if requested != "" {
		return requested
	}
	if h.Currency != "" {
		return h.Currency
	}
	return money.DefaultCurrency
}

func (h *CreateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateListingCommand, *dto.ListingView] = (*CreateListingHandler)(nil)
