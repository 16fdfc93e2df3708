package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"auth_service/internal/lib/hasher"
	"auth_service/internal/models"
	"auth_service/internal/storage"
)

// CredentialSource is something a caller presents to prove who they are.
type CredentialSource interface {
	// Email is the account the credential claims.
	Email() string
	// Matches reports whether the credential proves ownership of u.
	// u is the zero User when the account does not exist; Matches must
	// still do comparable work so that case is not observable by timing.
	Matches(ctx context.Context, u models.User, v PasswordVerifier) (bool, error)
}

type PasswordVerifier interface {
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// PasswordCredentials is an email and plaintext password.
type PasswordCredentials struct {
	Address  string
	Password string
}

func (p PasswordCredentials) Email() string {
	return p.Address
}

func (p PasswordCredentials) Matches(ctx context.Context, u models.User, v PasswordVerifier) (bool, error) {
	return v.Verify(ctx, p.Password, string(u.PassHash))
}

// Validator decides whether a credential is valid for a stored user.
type Validator struct {
	log         *slog.Logger
	usrProvider UserProvider
	verifier    *dummyVerifier
}

func NewValidator(log *slog.Logger, usrProvider UserProvider, pool *hasher.Pool) (*Validator, error) {
	const op = "auth.NewValidator"

	// one real hash with the configured parameters, so a missing account costs the same as a wrong password
	dummy, err := pool.Hash(context.Background(), "dummy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Validator{
		log:         log,
		usrProvider: usrProvider,
		verifier:    &dummyVerifier{pool: pool, dummy: dummy},
	}, nil
}

// Validate returns the identity behind src, or ErrInvalidCredentials.
// Unknown account, account without a password and wrong password all
// produce the same error; only the internal log tells them apart.
func (v *Validator) Validate(ctx context.Context, src CredentialSource) (models.Identity, error) {
	const op = "auth.Validator.Validate"

	log := v.log.With(slog.String("op", op))

	found := true
	user, err := v.usrProvider.UserByEmail(ctx, src.Email())
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return models.Identity{}, fmt.Errorf("%s: %w", op, err)
		}
		found = false
	}

	ok, err := src.Matches(ctx, user, v.verifier)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case !found:
		log.Info("user not found")
		return models.Identity{}, ErrInvalidCredentials
	case !user.HasPassword():
		log.Info("user has no password")
		return models.Identity{}, ErrInvalidCredentials
	case !ok:
		log.Info("invalid password", slog.String("uid", user.ID))
		return models.Identity{}, ErrInvalidCredentials
	}

	return user.Identity(), nil
}

// dummyVerifier verifies against a throwaway hash when there is no stored one.
type dummyVerifier struct {
	pool  *hasher.Pool
	dummy string
}

func (d *dummyVerifier) Verify(ctx context.Context, password, hash string) (bool, error) {
	if hash == "" {
		_, err := d.pool.Verify(ctx, password, d.dummy)
		return false, err
	}

	return d.pool.Verify(ctx, password, hash)
}
