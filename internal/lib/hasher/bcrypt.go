package hasher

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is above bcrypt.DefaultCost to keep offline guessing expensive.
const DefaultBcryptCost = 12

// BcryptMaxPasswordLen is in bytes, not runes.
const BcryptMaxPasswordLen = 72

type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Cost() int {
	return b.cost
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > BcryptMaxPasswordLen {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("hasher.Bcrypt.Hash: %w", err)
	}

	return string(hash), nil
}

// Verify compares in constant time; any error from bcrypt counts as a mismatch.
func (b *Bcrypt) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (b *Bcrypt) Supports(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
