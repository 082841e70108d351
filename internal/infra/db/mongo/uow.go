package mongo

import (
	"context"
	"errors"

	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

// ErrUnitOfWorkNotConfigured indicates missing repositories.
var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory misconfigured")

// Factory wires Mongo repositories into the generic UnitOfWork interface.
type Factory struct {
	ListingsRepo domainlisting.Repository
	BookingsRepo domainbooking.Repository
	UsersRepo    domainuser.Repository
}

// Begin opens an operation boundary over the Mongo repositories. No
// multi-document transaction is started; every repository write is an
// individual acknowledged operation, and the listing repository's
// version-filtered upsert carries the concurrency guarantee.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.BookingsRepo == nil || f.UsersRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	return &Unit{
		listings: f.ListingsRepo,
		bookings: f.BookingsRepo,
		users:    f.UsersRepo,
	}, nil
}

type Unit struct {
	listings domainlisting.Repository
	bookings domainbooking.Repository
	users    domainuser.Repository
}

func (u *Unit) Listings() domainlisting.Repository {
	return u.listings
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

// Commit is a no-op: each write is already durable when the repository call
// returns.
func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

// Rollback is a no-op; failed reservation attempts surface through the
// handler's reconciliation log instead of being undone here.
func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
