package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/dateindex"
	"stayhub/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save writes the listing conditionally on its version. The filter matches
// only the version the caller read; when another writer got there first the
// update matches nothing and the reservation race is lost cleanly.
func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainlisting.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainlisting.ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) ([]*domainlisting.Listing, error) {
	filter := bson.M{}
	if params.City != "" {
		filter["city"] = bson.M{"$regex": "^" + params.City + "$", "$options": "i"}
	}
	if params.Country != "" {
		filter["country"] = bson.M{"$regex": "^" + params.Country + "$", "$options": "i"}
	}
	price := bson.M{}
	if params.PriceMinCents > 0 {
		price["$gte"] = params.PriceMinCents
	}
	if params.PriceMaxCents > 0 {
		price["$lte"] = params.PriceMaxCents
	}
	if len(price) > 0 {
		filter["nightly_rate_cents"] = price
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "nightly_rate_cents", Value: 1}, {Key: "_id", Value: 1}})
	if params.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(params.Offset))
	}
	if params.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(params.Limit))
	}

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*domainlisting.Listing, 0)
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type listingDocument struct {
	ID               string   `bson:"_id"`
	Host             string   `bson:"host"`
	Title            string   `bson:"title"`
	Description      string   `bson:"description"`
	Type             string   `bson:"type"`
	PhotoURL         string   `bson:"photo_url"`
	Address          string   `bson:"address"`
	City             string   `bson:"city"`
	Country          string   `bson:"country"`
	GuestsLimit      int      `bson:"guests_limit"`
	NightlyRateCents int64    `bson:"nightly_rate_cents"`
	Currency         string   `bson:"currency"`
	BookedDays       []int64  `bson:"booked_days"`
	BookingIDs       []string `bson:"booking_ids"`
	CreatedAt        int64    `bson:"created_at"`
	UpdatedAt        int64    `bson:"updated_at"`
	Version          int64    `bson:"version"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	days := l.Index.Days()
	raw := make([]int64, len(days))
	for i, d := range days {
		raw[i] = int64(d)
	}
	return listingDocument{
		ID:               string(l.ID),
		Host:             l.Host,
		Title:            l.Title,
		Description:      l.Description,
		Type:             string(l.Type),
		PhotoURL:         l.PhotoURL,
		Address:          l.Address,
		City:             l.City,
		Country:          l.Country,
		GuestsLimit:      l.GuestsLimit,
		NightlyRateCents: l.NightlyRate.Amount,
		Currency:         l.NightlyRate.Currency,
		BookedDays:       raw,
		BookingIDs:       append([]string(nil), l.BookingIDs...),
		CreatedAt:        l.CreatedAt.UnixMilli(),
		UpdatedAt:        l.UpdatedAt.UnixMilli(),
		Version:          l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlisting.Listing {
	days := make([]dateindex.Day, len(d.BookedDays))
	for i, raw := range d.BookedDays {
		days[i] = dateindex.Day(raw)
	}
	return &domainlisting.Listing{
		ID:          domainlisting.ListingID(d.ID),
		Host:        d.Host,
		Title:       d.Title,
		Description: d.Description,
		Type:        domainlisting.ListingType(d.Type),
		PhotoURL:    d.PhotoURL,
		Address:     d.Address,
		City:        d.City,
		Country:     d.Country,
		GuestsLimit: d.GuestsLimit,
		NightlyRate: money.Money{Amount: d.NightlyRateCents, Currency: d.Currency},
		Index:       dateindex.FromDays(days),
		BookingIDs:  append([]string(nil), d.BookingIDs...),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
