package availability

import (
	"context"
	"time"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/dateindex"
)

const (
	getCalendarKey   = "availability.calendar"
	isDateBlockedKey = "availability.blocked"
)

const defaultHorizonDays = 180

const dateLayout = "2006-01-02"

// GetCalendarQuery projects blocked days for a listing over a window.
type GetCalendarQuery struct {
	ListingID string
	From      time.Time
	To        time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory  uow.UoWFactory
	HorizonDays int
	Now         func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.Calendar{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.Calendar{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}

	now := h.now()
	from := q.From
	if from.IsZero() {
		from = now
	}
	to := q.To
	if to.IsZero() {
		to = from.AddDate(0, 0, h.horizon())
	}

	first := dateindex.DayOf(from)
	last := dateindex.DayOf(to)
	blocked := make([]string, 0)
	for d := first; d <= last; d++ {
		if domainbooking.IsBlocked(l.Index, d.Time(), now, h.horizon()) {
			blocked = append(blocked, d.String())
		}
	}

	return dto.Calendar{
		ListingID:   q.ListingID,
		From:        first.String(),
		To:          last.String(),
		BlockedDays: blocked,
	}, nil
}

func (h *GetCalendarHandler) horizon() int {
	if h.HorizonDays > 0 {
		return h.HorizonDays
	}
	return defaultHorizonDays
}

func (h *GetCalendarHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// IsDateBlockedQuery answers for one calendar day.
type IsDateBlockedQuery struct {
	ListingID string
	Date      time.Time
}

func (q IsDateBlockedQuery) Key() string { return isDateBlockedKey }

type IsDateBlockedHandler struct {
	UoWFactory  uow.UoWFactory
	HorizonDays int
	Now         func() time.Time
}

func (h *IsDateBlockedHandler) Handle(ctx context.Context, q IsDateBlockedQuery) (dto.DateBlocked, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.DateBlocked{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.DateBlocked{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(q.ListingID))
	if err != nil {
		return dto.DateBlocked{}, err
	}

	horizon := h.HorizonDays
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}

	return dto.DateBlocked{
		ListingID: q.ListingID,
		Date:      q.Date.UTC().Format(dateLayout),
		Blocked:   domainbooking.IsBlocked(l.Index, q.Date, now, horizon),
	}, nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
var _ queries.Handler[IsDateBlockedQuery, dto.DateBlocked] = (*IsDateBlockedHandler)(nil)
