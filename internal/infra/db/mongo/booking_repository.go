package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Insert writes the immutable booking record exactly once; bookings are never
// updated after creation.
func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.col.InsertOne(ctx, newBookingDocument(b))
	return err
}

func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID domainuser.ID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"tenant_id": string(tenantID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*domainbooking.Booking, 0)
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID         string `bson:"_id"`
	ListingID  string `bson:"listing_id"`
	TenantID   string `bson:"tenant_id"`
	CheckIn    int64  `bson:"check_in"`
	CheckOut   int64  `bson:"check_out"`
	TotalCents int64  `bson:"total_cents"`
	Currency   string `bson:"currency"`
	CreatedAt  int64  `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		TenantID:   string(b.TenantID),
		CheckIn:    b.CheckIn.UnixMilli(),
		CheckOut:   b.CheckOut.UnixMilli(),
		TotalCents: b.Total.Amount,
		Currency:   b.Total.Currency,
		CreatedAt:  b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlisting.ListingID(d.ListingID),
		TenantID:  domainuser.ID(d.TenantID),
		CheckIn:   timestampToTime(d.CheckIn),
		CheckOut:  timestampToTime(d.CheckOut),
		Total:     money.Money{Amount: d.TotalCents, Currency: d.Currency},
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
