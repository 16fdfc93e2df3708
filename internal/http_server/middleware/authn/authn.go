// Package authn resolves the bearer token of a request into a session.
package authn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"auth_service/internal/lib/api/request"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/models"
	"auth_service/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// New rejects requests without a valid bearer token with 401 and stores
// the resolved session in the request context otherwise.
func New(log *slog.Logger, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := request.BearerToken(r)
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Missing bearer token"))

				return
			}

			s, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, session.ErrInvalidToken) {
					log.Debug("session rejected")

					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, resp.Error("Invalid or expired session"))

					return
				}

				log.Error("failed to resolve session", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		}

		return http.HandlerFunc(fn)
	}
}

func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(session.Session)
	return s, ok
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	s, ok := SessionFromContext(ctx)
	return s.Identity, ok
}
