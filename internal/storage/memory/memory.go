// Package memory is a process-local user store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"auth_service/internal/models"
	"auth_service/internal/storage"
)

type Repo struct {
	mu    sync.RWMutex
	users map[string]models.User // keyed by email
}

func New() *Repo {
	return &Repo{users: make(map[string]models.User)}
}

// SaveUser checks and inserts under one lock, so concurrent duplicates
// yield exactly one success.
func (r *Repo) SaveUser(_ context.Context, name, email string, passHash []byte) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[email]; ok {
		return models.User{}, storage.ErrUserExists
	}

	u := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		PassHash:  append([]byte(nil), passHash...),
		CreatedAt: time.Now().UTC(),
	}
	r.users[email] = u

	return u, nil
}

func (r *Repo) UserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	u.PassHash = append([]byte(nil), u.PassHash...)

	return u, nil
}

func (r *Repo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[email]

	return ok, nil
}

func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}
