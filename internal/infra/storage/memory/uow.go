package memory

import (
	"context"
	"errors"

	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo domainlisting.Repository
	BookingsRepo domainbooking.Repository
	UsersRepo    domainuser.Repository
}

// Begin starts a lightweight operation boundary. No isolation is provided;
// the listing repository's version check carries the concurrency guarantee.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.BookingsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings: f.ListingsRepo,
		bookings: f.BookingsRepo,
		users:    f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
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

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
