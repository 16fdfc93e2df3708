package models

import (
	"strings"
	"time"
)

type User struct {
	ID        string
	Email     string
	Name      string
	PassHash  []byte // nil for accounts created without a password
	CreatedAt time.Time
}

// Identity is the public view of an authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// HasPassword reports whether the account can log in with a password.
func (u User) HasPassword() bool {
	return len(u.PassHash) > 0
}

// NormalizeEmail returns the canonical form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const PurposeWelcome = "welcome"

// Message is published to the mail queue after a user registers.
type Message struct {
	Email   string `json:"to"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}
