package notify

import (
	"context"
	"log/slog"

	sl "auth_service/internal/lib/logger/sl"
	"auth_service/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// Nop drops every message. Used when no broker is configured.
type Nop struct{}

func (Nop) SendMessage(context.Context, models.Message) error { return nil }

// UserRegistered publishes the welcome message for u.
// Delivery is best effort: a failure is logged and not returned.
func UserRegistered(ctx context.Context, log *slog.Logger, pub Publisher, u models.User) {
	msg := models.Message{
		Email:   u.Email,
		Name:    u.Name,
		Purpose: models.PurposeWelcome,
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to publish registration message", sl.Err(err))
		return
	}

	log.Debug("registration message published")
}
