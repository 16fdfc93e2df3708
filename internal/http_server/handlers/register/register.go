package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"auth_service/internal/auth"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	// the hasher enforces its own byte limit
	Pass string `json:"password" validate:"required,max=1024"`
}

type Response struct {
	resp.Response
	User models.Identity `json:"user"`
}

type UserRegisterer interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registerer UserRegisterer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Debug("Request body decoded")

		req.Email = models.NormalizeEmail(req.Email)

		if err := validate.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if !errors.As(err, &validateErr) {
				log.Error("failed to validate request", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := registerer.Register(ctx, req.Name, req.Email, req.Pass)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("User with this email already exists"))
			case errors.Is(err, auth.ErrPasswordTooLong):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Password is too long"))
			case errors.Is(err, auth.ErrMissingFields):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("missing required fields: name, email, password"))
			default:
				log.Error("failed to register user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("User registered", slog.String("uid", user.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK("User registered successfully"),
			User:     user.Identity(),
		})
	}
}
