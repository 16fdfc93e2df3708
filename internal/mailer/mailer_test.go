package mailer

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"auth_service/internal/models"
)

func TestMailer_Send(t *testing.T) {
	var (
		gotFrom string
		gotTo   []string
		gotBody bytes.Buffer
	)

	m := &Mailer{
		Username: "noreply@example.com",
		Sender: gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
			gotFrom = from
			gotTo = to
			_, err := msg.WriteTo(&gotBody)
			return err
		}),
	}

	err := m.Send(models.Message{Email: "a@x.com", Name: "Ann", Purpose: models.PurposeWelcome})
	require.NoError(t, err)

	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.Contains(t, gotBody.String(), "Subject: Welcome")
	assert.Contains(t, gotBody.String(), "Hello Ann")
}

func TestMailer_SendError(t *testing.T) {
	boom := errors.New("smtp down")
	m := &Mailer{
		Username: "noreply@example.com",
		Sender: gomail.SendFunc(func(string, []string, io.WriterTo) error {
			return boom
		}),
	}

	err := m.Send(models.Message{Email: "a@x.com", Purpose: models.PurposeWelcome})
	require.Error(t, err)
	assert.Contains(t, err.Error(), boom.Error())
}

func TestMailer_UnknownPurpose(t *testing.T) {
	m := &Mailer{Username: "noreply@example.com"}

	_, err := m.Compose(models.Message{Email: "a@x.com", Purpose: "reset"})
	assert.Error(t, err)
}
