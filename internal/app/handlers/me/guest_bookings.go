package me

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainuser "stayhub/internal/domain/user"
)

const guestBookingsKey = "me.bookings"

// GuestBookingsQuery lists the caller's bookings, newest first.
type GuestBookingsQuery struct {
	TenantID string
}

func (q GuestBookingsQuery) Key() string { return guestBookingsKey }

type GuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GuestBookingsHandler) Handle(ctx context.Context, q GuestBookingsQuery) ([]dto.BookingView, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	items, err := unit.Bookings().ListByTenant(ctx, domainuser.ID(q.TenantID))
	if err != nil {
		return nil, err
	}
	return dto.BookingsToView(items), nil
}

var _ queries.Handler[GuestBookingsQuery, []dto.BookingView] = (*GuestBookingsHandler)(nil)
