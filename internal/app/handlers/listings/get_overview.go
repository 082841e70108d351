package listings

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlisting "stayhub/internal/domain/listing"
)

const getOverviewKey = "listings.overview"

// GetOverviewQuery loads a single listing by id.
type GetOverviewQuery struct {
	ListingID string
}

func (q GetOverviewQuery) Key() string { return getOverviewKey }

type GetOverviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetOverviewHandler) Handle(ctx context.Context, q GetOverviewQuery) (dto.ListingView, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.ListingView{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.ListingView{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingView{}, err
	}
	return dto.ListingToView(l), nil
}

var _ queries.Handler[GetOverviewQuery, dto.ListingView] = (*GetOverviewHandler)(nil)
