package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// RedisRepo keeps the list of session tokens revoked before expiry.
type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// * Revoke marks the token as revoked until ttl elapses.
func (r *RedisRepo) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	const op = "storage.redis.Revoke"

	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * IsRevoked reports whether the token was revoked and has not yet expired.
func (r *RedisRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const op = "storage.redis.IsRevoked"

	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// * Close закрывает соединение с Redis.
func (r *RedisRepo) Close() {
	r.client.Close()
}
