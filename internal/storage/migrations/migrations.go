// Package migrations embeds the SQL schema applied by goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Up applies all pending migrations to db.
func Up(ctx context.Context, db *sql.DB) error {
	const op = "migrations.Up"

	goose.SetBaseFS(FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpDSN opens dsn with the pgx stdlib driver and applies all pending migrations.
func UpDSN(ctx context.Context, dsn string) error {
	const op = "migrations.UpDSN"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return Up(ctx, db)
}
