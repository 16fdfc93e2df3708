package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"auth_service/internal/models"
)

type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// WithIssuerName sets the "iss" claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) { i.issuer = name }
}

// NewIssuer fails with ErrEmptySecret if secret is empty. A zero ttl means DefaultTTL.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	i := &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed token for identity and its expiry time.
func (i *Issuer) Issue(identity models.Identity) (string, time.Time, error) {
	const op = "session.Issuer.Issue"

	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: identity.Email,
		Name:  identity.Name,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, expiresAt, nil
}
