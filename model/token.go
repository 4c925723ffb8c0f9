package model

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
)

// ErrTokenNotFound is returned when no record exists for a presented token.
// Callers must not leak the distinction between unknown and expired tokens to
// the client.
var ErrTokenNotFound = errors.New("token not found")

// Token is the record the issuance tooling stores for each bearer token.
// It is read-only to the gateway; revocation happens by deleting the secret.
type Token struct {
	Token     string    `json:"token"`
	Identity  string    `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is no longer valid at the given time.
// Expiry is enforced at validation time, not at storage time.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// TokenStore looks up the record for a bearer token.
type TokenStore interface {
	// GetToken returns the record for the exact token value, or
	// ErrTokenNotFound when no matching record exists.
	GetToken(ctx context.Context, token string) (*Token, error)
}
