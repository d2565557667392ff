package session

import (
	"context"
	"time"
)

// Session is the server-side record an opaque cookie token points at. It
// carries the caller identity plus the provider access token needed by the
// settings operations that talk to the identity provider on the user's
// behalf.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions. Get returns (nil, nil) when no session exists for
// the given ID.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
