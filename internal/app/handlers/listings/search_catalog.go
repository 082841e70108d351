package listings

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlisting "stayhub/internal/domain/listing"
)

const searchCatalogKey = "listings.catalog"

// SearchCatalogQuery describes request filters.
type SearchCatalogQuery struct {
	City          string
	Country       string
	PriceMinCents int64
	PriceMaxCents int64
	Limit         int
	Offset        int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.CatalogPage, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.CatalogPage{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.CatalogPage{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	items, err := unit.Listings().Search(ctx, domainlisting.SearchParams{
		City:          q.City,
		Country:       q.Country,
		PriceMinCents: q.PriceMinCents,
		PriceMaxCents: q.PriceMaxCents,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return dto.CatalogPage{}, err
	}

	return dto.CatalogPage{
		Total:    len(items),
		Listings: dto.ListingsToView(items),
	}, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.CatalogPage] = (*SearchCatalogHandler)(nil)
