package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stayhub/internal/app/uow"
)

func TestFactoryBeginRequiresRepositories(t *testing.T) {
	_, err := Factory{}.Begin(context.Background(), uow.TxOptions{})
	require.ErrorIs(t, err, ErrUnitOfWorkNotConfigured)

	_, err = Factory{
		ListingsRepo: &ListingRepository{},
		BookingsRepo: &BookingRepository{},
	}.Begin(context.Background(), uow.TxOptions{})
	require.ErrorIs(t, err, ErrUnitOfWorkNotConfigured)
}

func TestFactoryBeginOpensSessionlessUnit(t *testing.T) {
	listings := &ListingRepository{}
	bookings := &BookingRepository{}
	users := &UserRepository{}

	unit, err := Factory{
		ListingsRepo: listings,
		BookingsRepo: bookings,
		UsersRepo:    users,
	}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)

	require.Same(t, listings, unit.Listings())
	require.Same(t, bookings, unit.Bookings())
	require.Same(t, users, unit.Users())

	// Each repository write is individually durable, so finishing the unit
	// must not require a live session or server round-trip.
	require.NoError(t, unit.Commit(context.Background()))
	require.NoError(t, unit.Rollback(context.Background()))
}
