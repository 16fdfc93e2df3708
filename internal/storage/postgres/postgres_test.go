package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth_service/internal/storage"
)

func newMockRepo(t *testing.T) (*PostgresRepo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	return NewWithDB(mock), mock
}

func TestSaveUser(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("inserts and returns the user", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "a@x.com", "Ann", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

		u, err := repo.SaveUser(ctx, "Ann", "a@x.com", []byte("$2a$hash"))
		require.NoError(t, err)

		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "a@x.com", u.Email)
		assert.Equal(t, "Ann", u.Name)
		assert.Equal(t, []byte("$2a$hash"), u.PassHash)
		assert.Equal(t, created, u.CreatedAt)
	})

	t.Run("unique violation maps to ErrUserExists", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "a@x.com", "Ann", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

		_, err := repo.SaveUser(ctx, "Ann", "a@x.com", []byte("h"))
		assert.ErrorIs(t, err, storage.ErrUserExists)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		boom := errors.New("connection refused")

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "a@x.com", "Ann", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(boom)

		_, err := repo.SaveUser(ctx, "Ann", "a@x.com", []byte("h"))
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, storage.ErrUserExists)
	})
}

func TestUserByEmail(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "email", "name", "password_hash", "created_at"}

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, email, name`).
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows(columns).AddRow("id-1", "a@x.com", "Ann", "$2a$hash", created))

		u, err := repo.UserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "id-1", u.ID)
		assert.Equal(t, []byte("$2a$hash"), u.PassHash)
		assert.True(t, u.HasPassword())
	})

	t.Run("account without password", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, email, name`).
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows(columns).AddRow("id-1", "a@x.com", "Ann", "", created))

		u, err := repo.UserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.False(t, u.HasPassword())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, email, name`).
			WithArgs("nobody@x.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.UserByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		boom := errors.New("boom")

		mock.ExpectQuery(`SELECT id, email, name`).
			WithArgs("a@x.com").
			WillReturnError(boom)

		_, err := repo.UserByEmail(ctx, "a@x.com")
		assert.ErrorIs(t, err, boom)
	})
}

func TestEmailExists(t *testing.T) {
	ctx := context.Background()

	for _, want := range []bool{true, false} {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := repo.EmailExists(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("a@x.com").
			WillReturnError(errors.New("boom"))

		_, err := repo.EmailExists(ctx, "a@x.com")
		assert.Error(t, err)
	})
}

func TestPingAndClose(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectPing()
	mock.ExpectClose()

	require.NoError(t, repo.Ping(context.Background()))
	repo.Close()
}
