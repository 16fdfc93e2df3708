package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"auth_service/internal/lib/hasher"
	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/lib/notify"
	"auth_service/internal/metrics"
	"auth_service/internal/models"
	"auth_service/internal/session"
	"auth_service/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrMissingFields      = errors.New("missing required fields")
	ErrPasswordTooLong    = errors.New("password is too long")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	hasher      *hasher.Pool
	validator   *Validator
	issuer      *session.Issuer
	resolver    *session.Resolver
	publisher   notify.Publisher
	recorder    Recorder
}

type UserSaver interface {
	SaveUser(ctx context.Context, name, email string, passHash []byte) (models.User, error)
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Recorder receives the outcome of every gateway operation.
// *metrics.Metrics satisfies it.
type Recorder interface {
	LoginAttempt(result string)
	Registration(result string)
	SessionResolution(result string)
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(string)      {}
func (nopRecorder) Registration(string)      {}
func (nopRecorder) SessionResolution(string) {}

type Option func(*Auth)

// WithPublisher sets where registration messages go. Default drops them.
func WithPublisher(pub notify.Publisher) Option {
	return func(a *Auth) {
		if pub != nil {
			a.publisher = pub
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(a *Auth) {
		if rec != nil {
			a.recorder = rec
		}
	}
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	pool *hasher.Pool,
	issuer *session.Issuer,
	resolver *session.Resolver,
	opts ...Option,
) (*Auth, error) {
	const op = "auth.New"

	validator, err := NewValidator(log, userProvider, pool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		hasher:      pool,
		validator:   validator,
		issuer:      issuer,
		resolver:    resolver,
		publisher:   notify.Nop{},
		recorder:    nopRecorder{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// * Login проверяет учетные данные и выдает токен сессии
func (a *Auth) Login(ctx context.Context, email, password string) (string, models.Identity, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		a.recorder.LoginAttempt(metrics.ResultInvalid)
		return "", models.Identity{}, ErrMissingFields
	}

	log.Debug("validating credentials")

	identity, err := a.validator.Validate(ctx, PasswordCredentials{Address: email, Password: password})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.recorder.LoginAttempt(metrics.ResultRejected)
			return "", models.Identity{}, ErrInvalidCredentials
		}

		log.Error("failed to validate credentials", sl.Err(err))
		a.recorder.LoginAttempt(metrics.ResultError)

		return "", models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("credentials accepted, issuing token", slog.String("uid", identity.ID))

	token, _, err := a.issuer.Issue(identity)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		a.recorder.LoginAttempt(metrics.ResultError)

		return "", models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.String("uid", identity.ID))
	a.recorder.LoginAttempt(metrics.ResultSuccess)

	return token, identity, nil
}

// * Register создает нового пользователя
func (a *Auth) Register(ctx context.Context, name, email, password string) (models.User, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		a.recorder.Registration(metrics.ResultInvalid)
		return models.User{}, ErrMissingFields
	}

	log.Info("registering new user")

	// fast path for the common duplicate; the store still decides under a race
	exists, err := a.usrProvider.EmailExists(ctx, email)
	if err != nil {
		log.Error("failed to check email", sl.Err(err))
		a.recorder.Registration(metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		log.Warn("user already exists")
		a.recorder.Registration(metrics.ResultConflict)

		return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
	}

	passHash, err := a.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, hasher.ErrPasswordTooLong) {
			log.Info("password exceeds hasher limit")
			a.recorder.Registration(metrics.ResultInvalid)

			return models.User{}, fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
		}

		log.Error("failed to generate password hash", sl.Err(err))
		a.recorder.Registration(metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.usrSaver.SaveUser(ctx, name, email, []byte(passHash))
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			a.recorder.Registration(metrics.ResultConflict)

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))
		a.recorder.Registration(metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("uid", user.ID))
	a.recorder.Registration(metrics.ResultSuccess)

	notify.UserRegistered(ctx, log, a.publisher, user)

	return user, nil
}

// Resolve verifies a bearer token and returns the session it carries.
func (a *Auth) Resolve(ctx context.Context, token string) (session.Session, error) {
	const op = "auth.Resolve"

	s, err := a.resolver.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			a.recorder.SessionResolution(metrics.ResultRejected)
			return session.Session{}, session.ErrInvalidToken
		}

		a.log.Error("failed to resolve session", slog.String("op", op), sl.Err(err))
		a.recorder.SessionResolution(metrics.ResultError)

		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	a.recorder.SessionResolution(metrics.ResultSuccess)

	return s, nil
}

// Logout revokes s when a revocation store is configured and is a no-op otherwise.
func (a *Auth) Logout(ctx context.Context, s session.Session) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if !a.resolver.Revocable() {
		log.Debug("revocation disabled, nothing to do")
		return nil
	}

	if err := a.resolver.Revoke(ctx, s); err != nil {
		log.Error("failed to revoke session", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logout successful", slog.String("uid", s.Identity.ID))

	return nil
}
