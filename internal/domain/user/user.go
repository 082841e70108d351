package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/shared/money"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
	ErrBookingIDRequired   = errors.New("user: booking id is required")
	ErrBookingAttached     = errors.New("user: booking already attached")
)

type ID string

// User participates in bookings on both sides: as the tenant being debited and
// as the host being credited. WalletID is the payment-receiving capability
// token; a host without one cannot be paid and cannot accept bookings.
type User struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	AvatarURL    string
	WalletID     string
	Income       money.Money
	BookingIDs   []string
	ListingIDs   []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	AvatarURL    string
	WalletID     string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		PasswordHash: params.PasswordHash,
		AvatarURL:    strings.TrimSpace(params.AvatarURL),
		WalletID:     strings.TrimSpace(params.WalletID),
		Income:       money.Money{Amount: 0, Currency: money.DefaultCurrency},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasWallet reports whether the user can receive payouts.
func (u *User) HasWallet() bool {
	return strings.TrimSpace(u.WalletID) != ""
}

// ConnectWallet attaches a payment-receiving token.
func (u *User) ConnectWallet(walletID string, now time.Time) {
	u.WalletID = strings.TrimSpace(walletID)
	u.touch(now)
}

// CreditIncome adds earned money to the user's accumulated income.
func (u *User) CreditIncome(amount money.Money, now time.Time) error {
	if u.Income.Currency == "" {
		u.Income = money.Money{Amount: 0, Currency: amount.Currency}
	}
	total, err := u.Income.Add(amount)
	if err != nil {
		return err
	}
	u.Income = total
	u.touch(now)
	return nil
}

// AttachBooking appends a booking reference to the user's booking list. Each
// booking is referenced at most once.
func (u *User) AttachBooking(bookingID string, now time.Time) error {
	if strings.TrimSpace(bookingID) == "" {
		return ErrBookingIDRequired
	}
	for _, id := range u.BookingIDs {
		if id == bookingID {
			return ErrBookingAttached
		}
	}
	u.BookingIDs = append(u.BookingIDs, bookingID)
	u.touch(now)
	return nil
}

// AttachListing appends a listing reference to the user's owned listings.
func (u *User) AttachListing(listingID string, now time.Time) {
	u.ListingIDs = append(u.ListingIDs, listingID)
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
