package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"auth_service/internal/config"
	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/mailer"
	"auth_service/internal/models"
	"auth_service/internal/rabbitmq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadMailer("")
	log := setupLogger(cfg.Env)

	log.Info("Starting mail_sender", slog.String("env", cfg.Env))

	if err := run(ctx, cfg, log); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.MailerConfig, log *slog.Logger) error {
	r, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to init rabbitmq", sl.Err(err))
		return err
	}
	defer r.Close()

	m := &mailer.Mailer{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
	}

	done := make(chan error, 1)

	go func() {
		done <- r.StartReading(ctx, func(msg models.Message) error {
			log := log.With(slog.String("purpose", msg.Purpose))

			if err := m.Send(msg); err != nil {
				log.Error("failed to send message", sl.Err(err))
				return err
			}

			log.Info("message sent successfully")
			return nil
		})
	}()

	log.Info("consumer successfully started")

	select {
	case <-ctx.Done():
		log.Info("shutting down consumer...")
	case err := <-done:
		if err != nil {
			log.Error("consumer stopped", sl.Err(err))
			return err
		}
		log.Info("consumer finished the work")
	}

	log.Info("service gracefully stopped")
	return nil
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
