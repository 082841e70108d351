package dto

import (
	"time"

	"stayhub/internal/domain/user"
)

type UserProfile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	HasWallet   bool      `json:"hasWallet"`
	IncomeCents int64     `json:"incomeCents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
}

func UserToProfile(u *user.User) UserProfile {
	return UserProfile{
		ID:          string(u.ID),
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		HasWallet:   u.HasWallet(),
		IncomeCents: u.Income.Amount,
		Currency:    u.Income.Currency,
		CreatedAt:   u.CreatedAt,
	}
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
