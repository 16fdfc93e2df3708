package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"auth_service/internal/config"
	"auth_service/internal/models"
	"auth_service/internal/storage"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type PostgresRepo struct {
	db  DB
	now func() time.Time
}

func New(ctx context.Context, cfg config.Postgres) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return NewWithDB(pool), nil
}

func NewWithDB(db DB) *PostgresRepo {
	return &PostgresRepo{
		db:  db,
		now: time.Now,
	}
}

// SaveUser inserts a user. The unique index on email is the race-safe
// uniqueness guard: a concurrent duplicate fails with storage.ErrUserExists.
func (r *PostgresRepo) SaveUser(ctx context.Context, name, email string, passHash []byte) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`

	u := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		PassHash: passHash,
	}

	var hash *string
	if len(passHash) > 0 {
		h := string(passHash)
		hash = &h
	}

	err := r.db.QueryRow(ctx, query, u.ID, email, name, hash, r.now().UTC()).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `
		SELECT id, email, name, COALESCE(password_hash, ''), created_at
		FROM users
		WHERE email = $1;
	`

	var (
		u    models.User
		hash string
	)

	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&hash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if hash != "" {
		u.PassHash = []byte(hash)
	}

	return u, nil
}

func (r *PostgresRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.postgres.EmailExists"

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1);`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresRepo) Close() {
	r.db.Close()
}
