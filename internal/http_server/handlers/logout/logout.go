package logout

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"auth_service/internal/http_server/middleware/authn"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SessionCloser interface {
	Logout(ctx context.Context, s session.Session) error
}

// New ends the session of the request's bearer token.
// Must be mounted behind authn.New.
func New(
	log *slog.Logger,
	closer SessionCloser,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		s, ok := authn.SessionFromContext(r.Context())
		if !ok {
			log.Error("no session in request context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Invalid or expired session"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := closer.Logout(ctx, s); err != nil {
			log.Error("failed to logout user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("user logged out successfully")

		render.JSON(w, r, resp.OK("Logged out"))
	}
}
