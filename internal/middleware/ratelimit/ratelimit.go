package rateLimit

import (
	"net/http"
	"time"

	resp "auth_service/internal/lib/api/response"

	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
)

// Rule allows Requests per Window from one client IP. Requests <= 0 disables it.
type Rule struct {
	Requests int
	Window   time.Duration
}

type Limits struct {
	Login    Rule
	Register Rule
	Session  Rule
	Logout   Rule
}

func Default() Limits {
	return Limits{
		Login:    Rule{Requests: 10, Window: 5 * time.Minute},
		Register: Rule{Requests: 5, Window: time.Hour},
		Session:  Rule{Requests: 120, Window: time.Minute},
		Logout:   Rule{Requests: 20, Window: 10 * time.Minute},
	}
}

// Disabled lets every request through.
func Disabled() Limits {
	return Limits{}
}

func (r Rule) Handler() func(http.Handler) http.Handler {
	if r.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return limitByIP(r.Requests, r.Window)
}

func limitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, resp.Error("Too many requests"))
		}),
	)
}
