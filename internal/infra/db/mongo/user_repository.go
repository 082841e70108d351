package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection("agg_user")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &UserRepository{col: col}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"email": key}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

type userDocument struct {
	ID           string   `bson:"_id"`
	Email        string   `bson:"email"`
	Name         string   `bson:"name"`
	PasswordHash string   `bson:"password_hash"`
	AvatarURL    string   `bson:"avatar_url"`
	WalletID     string   `bson:"wallet_id"`
	IncomeCents  int64    `bson:"income_cents"`
	Currency     string   `bson:"currency"`
	BookingIDs   []string `bson:"booking_ids"`
	ListingIDs   []string `bson:"listing_ids"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
		WalletID:     u.WalletID,
		IncomeCents:  u.Income.Amount,
		Currency:     u.Income.Currency,
		BookingIDs:   append([]string(nil), u.BookingIDs...),
		ListingIDs:   append([]string(nil), u.ListingIDs...),
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		AvatarURL:    d.AvatarURL,
		WalletID:     d.WalletID,
		Income:       money.Money{Amount: d.IncomeCents, Currency: d.Currency},
		BookingIDs:   append([]string(nil), d.BookingIDs...),
		ListingIDs:   append([]string(nil), d.ListingIDs...),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

var _ domainuser.Repository = (*UserRepository)(nil)
