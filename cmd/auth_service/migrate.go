package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"auth_service/internal/config"
	"auth_service/internal/storage/migrations"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return fmt.Errorf("migrate: storage driver is %q, nothing to migrate", cfg.Storage.Driver)
	}

	cmd.Println("Running migrations...")
	if err := migrations.UpDSN(cmd.Context(), cfg.Postgres.DSN()); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
