// Package hasher implements salted, adaptive password hashing.
//
// Hashes are self-describing strings (bcrypt modular crypt format or the
// argon2id PHC format), so verification works regardless of which algorithm
// is currently configured for new hashes.
package hasher

import (
	"errors"
	"fmt"
	"strings"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	ErrEmptyPassword        = errors.New("password cannot be empty")
	ErrPasswordTooLong      = errors.New("password is too long")
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
)

// Hasher hashes and verifies passwords.
//
// Verify never fails loudly: a corrupted or foreign hash is simply a mismatch.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type scheme interface {
	Hasher
	Supports(hash string) bool
}

// Multi hashes with one scheme and verifies against whichever scheme produced the stored hash.
type Multi struct {
	primary scheme
	schemes []scheme
}

// New returns a Hasher that produces hashes with the named algorithm.
// bcryptCost is only used when algorithm is bcrypt.
func New(algorithm string, bcryptCost int) (*Multi, error) {
	const op = "hasher.New"

	bc, err := NewBcrypt(bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	argon := NewArgon2id()

	m := &Multi{schemes: []scheme{bc, argon}}

	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		m.primary = bc
	case AlgorithmArgon2id:
		m.primary = argon
	default:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnsupportedAlgorithm, algorithm)
	}

	return m, nil
}

func (m *Multi) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *Multi) Verify(password, hash string) bool {
	for _, s := range m.schemes {
		if s.Supports(hash) {
			return s.Verify(password, hash)
		}
	}

	return false
}
