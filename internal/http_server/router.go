// Package http_server wires the gateway's HTTP surface.
package http_server

import (
	"log/slog"
	"net/http"

	"auth_service/internal/auth"
	"auth_service/internal/http_server/handlers/health"
	"auth_service/internal/http_server/handlers/login"
	"auth_service/internal/http_server/handlers/logout"
	"auth_service/internal/http_server/handlers/register"
	sessionHandler "auth_service/internal/http_server/handlers/session"
	"auth_service/internal/http_server/middleware/authn"
	"auth_service/internal/lib/api/request"
	rateLimit "auth_service/internal/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

type Options struct {
	Limits rateLimit.Limits
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	// Pinger is checked by /healthz when non-nil.
	Pinger health.Pinger
}

func NewRouter(log *slog.Logger, authService *auth.Auth, opts Options) *chi.Mux {
	validate := request.NewValidator()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.With(opts.Limits.Register.Handler()).Post("/register",
		register.New(log, validate, authService),
	)
	r.With(opts.Limits.Login.Handler()).Post("/login",
		login.New(log, validate, authService),
	)

	r.Group(func(r chi.Router) {
		r.Use(authn.New(log, authService))

		r.With(opts.Limits.Session.Handler()).Get("/session",
			sessionHandler.New(log),
		)
		r.With(opts.Limits.Logout.Handler()).Post("/logout",
			logout.New(log, authService),
		)
	})

	r.Get("/healthz", health.New(log, opts.Pinger))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return r
}
