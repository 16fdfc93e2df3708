package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auth_service/internal/auth"
	"auth_service/internal/config"
	"auth_service/internal/http_server"
	"auth_service/internal/http_server/handlers/health"
	"auth_service/internal/lib/hasher"
	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/lib/notify"
	"auth_service/internal/metrics"
	rateLimit "auth_service/internal/middleware/ratelimit"
	"auth_service/internal/rabbitmq"
	"auth_service/internal/session"
	"auth_service/internal/storage/memory"
	"auth_service/internal/storage/postgres"
	"auth_service/internal/storage/redis"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE:  runServe,
	}
}

type userStore interface {
	auth.UserSaver
	auth.UserProvider
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := setupLogger(cfg.Env)

	log.Info("starting auth service", slog.String("env", cfg.Env))
	if cfg.InsecureSecret {
		log.Warn("tokens.secret is empty, using the insecure development secret")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store  userStore
		pinger health.Pinger
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			log.Error("failed to connect postgres", sl.Err(err))
			return err
		}
		defer pg.Close()

		store, pinger = pg, pg
	default:
		log.Warn("using in-memory storage, users are lost on restart")
		store = memory.New()
	}

	var resolverOpts []session.ResolverOption
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error("failed to connect redis", sl.Err(err))
			return err
		}
		defer rdb.Close()

		resolverOpts = append(resolverOpts, session.WithRevoker(rdb))
		log.Info("session revocation enabled")
	}

	var publisher notify.Publisher = notify.Nop{}
	if cfg.RabbitMQ.URL != "" {
		msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Error("failed to connect rabbitmq", sl.Err(err))
			return err
		}
		defer msgBroker.Close()

		publisher = msgBroker
	}

	m := metrics.New()

	h, err := hasher.New(cfg.Hasher.Algorithm, cfg.Hasher.BcryptCost)
	if err != nil {
		return fmt.Errorf("hasher: %w", err)
	}
	pool := hasher.NewPool(h, cfg.Hasher.Workers, m.ObserveHash)

	issuer, err := session.NewIssuer(cfg.Tokens.Secret, cfg.Tokens.SessionTTL, session.WithIssuerName(cfg.Tokens.Issuer))
	if err != nil {
		return err
	}
	resolverOpts = append(resolverOpts, session.WithExpectedIssuer(cfg.Tokens.Issuer))
	resolver, err := session.NewResolver(cfg.Tokens.Secret, resolverOpts...)
	if err != nil {
		return err
	}

	authService, err := auth.New(log, store, store, pool, issuer, resolver,
		auth.WithPublisher(publisher),
		auth.WithRecorder(m),
	)
	if err != nil {
		return err
	}

	limits := rateLimit.Disabled()
	if cfg.RateLimit.Enabled {
		limits = rateLimit.Default()
	}

	router := http_server.NewRouter(log, authService, http_server.Options{
		Limits:  limits,
		Metrics: m.Handler(),
		Pinger:  pinger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", sl.Err(err))
			return err
		}
	}

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
		return err
	}

	log.Info("Server stopped gracefully")

	return nil
}
