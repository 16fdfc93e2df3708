package login

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

// MsgInvalidCredentials is the only message a rejected login ever gets.
const MsgInvalidCredentials = "Invalid credentials"

type Request struct {
	Email string `json:"email" validate:"required"`
	Pass  string `json:"password" validate:"required"`
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Response struct {
	resp.Response
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserLogin interface {
	Login(ctx context.Context, email, password string) (string, models.Identity, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	userLogin UserLogin,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

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

		token, identity, err := userLogin.Login(ctx, req.Email, req.Pass)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error(MsgInvalidCredentials))
			case errors.Is(err, auth.ErrMissingFields):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("missing required fields: email, password"))
			default:
				log.Error("failed to login user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("User logged in successfully", slog.String("uid", identity.ID))

		render.JSON(w, r, Response{
			Response: resp.OK("Login successful"),
			Token:    token,
			User: User{
				Name:  identity.Name,
				Email: identity.Email,
			},
		})
	}
}
