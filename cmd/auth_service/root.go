package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"auth_service/internal/config"
)

var configPath string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "auth_service",
		Short:        "Credential authentication and session service",
		SilenceUsage: true,
	}

	// falls back to CONFIG_PATH
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
