package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Resolver struct {
	secret  []byte
	issuer  string
	now     func() time.Time
	revoker Revoker
}

type ResolverOption func(*Resolver)

func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// WithExpectedIssuer requires the "iss" claim to equal name.
func WithExpectedIssuer(name string) ResolverOption {
	return func(r *Resolver) { r.issuer = name }
}

// WithRevoker makes Resolve consult rv for revoked token IDs.
func WithRevoker(rv Revoker) ResolverOption {
	return func(r *Resolver) { r.revoker = rv }
}

func NewResolver(secret string, opts ...ResolverOption) (*Resolver, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	r := &Resolver{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolve verifies the token and returns the identity embedded at issuance.
// The user store is not consulted.
//
// Every failure that the caller can cause is reported as ErrInvalidToken;
// other errors come from the Revoker.
func (r *Resolver) Resolve(ctx context.Context, tokenStr string) (Session, error) {
	const op = "session.Resolver.Resolve"

	if tokenStr == "" {
		return Session{}, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(r.now),
	}
	if r.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(r.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	if claims.Subject == "" || claims.Email == "" {
		return Session{}, ErrInvalidToken
	}

	if r.revoker != nil && claims.ID != "" {
		revoked, err := r.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		if revoked {
			return Session{}, ErrInvalidToken
		}
	}

	s := Session{
		Identity:  claims.Identity(),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}

	return s, nil
}

// Revoke lists the token's ID with the revoker until the token would have expired.
// Without a revoker it is a no-op.
func (r *Resolver) Revoke(ctx context.Context, s Session) error {
	const op = "session.Resolver.Revoke"

	if r.revoker == nil || s.TokenID == "" {
		return nil
	}

	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	if err := r.revoker.Revoke(ctx, s.TokenID, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Revocable reports whether Revoke has a server-side effect.
func (r *Resolver) Revocable() bool {
	return r.revoker != nil
}
