package session

import (
	"log/slog"
	"net/http"
	"time"

	"auth_service/internal/http_server/middleware/authn"
	resp "auth_service/internal/lib/api/response"
	"auth_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	User      models.Identity `json:"user"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// New reports the identity behind the request's bearer token.
// Must be mounted behind authn.New.
func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.New"

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

		render.JSON(w, r, Response{
			Response:  resp.OK("Session is valid"),
			User:      s.Identity,
			ExpiresAt: s.ExpiresAt.UTC(),
		})
	}
}
