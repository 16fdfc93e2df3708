package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger/sl"

	"github.com/go-chi/render"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// New answers liveness probes. With a non-nil pinger it also checks the user store.
func New(log *slog.Logger, pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.New"

		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				log.Error("storage ping failed", slog.String("op", op), sl.Err(err))

				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, resp.Error("Storage unavailable"))

				return
			}
		}

		render.JSON(w, r, resp.OK("ok"))
	}
}
