// Package session mints and verifies the signed bearer tokens handed out at login.
//
// Tokens are HS256 JWTs. The server keeps no session record: a token is valid
// while its signature checks out and it has not expired, unless a Revoker is
// configured and lists the token's ID.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth_service/internal/models"
)

const DefaultTTL = 24 * time.Hour

// InsecureDevSecret is substituted for an empty secret in the local
// environment only. Anyone can forge tokens signed with it.
const InsecureDevSecret = "insecure-local-development-secret-do-not-use"

var (
	ErrEmptySecret  = errors.New("session signing secret is not set")
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (c *Claims) Identity() models.Identity {
	return models.Identity{
		ID:    c.Subject,
		Name:  c.Name,
		Email: c.Email,
	}
}

// Revoker tracks tokens invalidated before their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Session is a resolved token.
type Session struct {
	Identity  models.Identity
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
