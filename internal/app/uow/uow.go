package uow

import (
	"context"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

// UnitOfWork bundles the repositories a handler touches within one logical
// operation. The four reservation writes target independent documents and no
// cross-document transaction is assumed; atomicity of the contended write
// rests on the listing repository's version check, and Commit/Rollback mark
// the operation boundary for middleware (outbox flush, idempotency).
type UnitOfWork interface {
	Listings() domainlisting.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure the operation boundary.
type TxOptions struct {
	ReadOnly bool
}
