package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work in context")

type unitKey struct{}

// ContextWithUnitOfWork makes the unit reachable by every handler invoked
// below the transaction middleware.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext returns the ambient unit of work, if any. Handlers that get
// false open their own short-lived unit instead.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
