package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"auth_service/internal/models"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string

	// Sender overrides SMTP delivery, used in tests.
	Sender gomail.Sender
}

// Send delivers the mail for msg.
func (m *Mailer) Send(msg models.Message) error {
	const op = "mailer.Send"

	mail, err := m.Compose(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if m.Sender != nil {
		if err := gomail.Send(m.Sender, mail); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *Mailer) Compose(msg models.Message) (*gomail.Message, error) {
	subject, body, err := render(msg)
	if err != nil {
		return nil, err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("To", msg.Email)
	mail.SetHeader("From", m.Username)
	mail.SetHeader("Subject", subject)
	mail.SetBody("text/plain", body)

	return mail, nil
}

func render(msg models.Message) (subject, body string, err error) {
	switch msg.Purpose {
	case models.PurposeWelcome:
		name := msg.Name
		if name == "" {
			name = msg.Email
		}
		return "Welcome", fmt.Sprintf("Hello %s,\n\nyour account has been created. You can now log in with %s.\n", name, msg.Email), nil
	default:
		return "", "", fmt.Errorf("unknown message purpose %q", msg.Purpose)
	}
}
