package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is the opaque bearer credential handed to a client at login.
type Token string

// Session ties a token to a user for a bounded time. Sessions are immutable;
// expiry means re-login rather than refresh.
type Session struct {
	Token     Token
	UserID    user.ID
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	token := Token(strings.TrimSpace(string(params.Token)))
	if token == "" {
		return nil, ErrTokenRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if params.TTL <= 0 {
		return nil, ErrTTLInvalid
	}
	now := params.Now.UTC()
	if params.Now.IsZero() {
		now = time.Now().UTC()
	}
	return &Session{
		Token:     token,
		UserID:    params.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

// Expired reports whether the session is no longer usable at the given
// moment. ExpiresAt itself counts as expired.
func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !at.UTC().Before(s.ExpiresAt)
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
