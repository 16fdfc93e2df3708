package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

const argon2Prefix = "$argon2id$"

// Upper bounds on parameters read back from a stored hash.
const (
	maxArgon2Time   = 10
	maxArgon2Memory = 1 << 20
)

type Argon2id struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

func NewArgon2id() *Argon2id {
	return &Argon2id{
		Time:    argon2Time,
		Memory:  argon2Memory,
		Threads: argon2Threads,
	}
}

// Hash encodes as $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func (a *Argon2id) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hasher.Argon2id.Hash: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.Time, a.Memory, a.Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.Memory,
		a.Time,
		a.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a *Argon2id) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if threads == 0 || threads > 255 || time == 0 || time > maxArgon2Time || memory == 0 || memory > maxArgon2Memory {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func (a *Argon2id) Supports(hash string) bool {
	return strings.HasPrefix(hash, argon2Prefix)
}
