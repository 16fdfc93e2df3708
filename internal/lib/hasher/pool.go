package hasher

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	OpHash   = "hash"
	OpVerify = "verify"
)

// Observer receives the duration of every completed hashing operation.
type Observer func(op string, d time.Duration)

// Pool bounds the number of concurrent hashing operations.
type Pool struct {
	hasher  Hasher
	sem     *semaphore.Weighted
	workers int
	observe Observer
}

// NewPool wraps h. workers <= 0 means runtime.GOMAXPROCS(0).
func NewPool(h Hasher, workers int, observe Observer) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if observe == nil {
		observe = func(string, time.Duration) {}
	}

	return &Pool{
		hasher:  h,
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
		observe: observe,
	}
}

func (p *Pool) Workers() int {
	return p.workers
}

// Hash waits for a free slot, then hashes. Only ctx cancellation while
// waiting and hasher errors are returned.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	const op = "hasher.Pool.Hash"

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	hash, err := p.hasher.Hash(password)
	p.observe(OpHash, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hash, nil
}

// Verify waits for a free slot, then verifies. The error is non-nil only
// when ctx ends before a slot frees up.
func (p *Pool) Verify(ctx context.Context, password, hash string) (bool, error) {
	const op = "hasher.Pool.Verify"

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	ok := p.hasher.Verify(password, hash)
	p.observe(OpVerify, time.Since(start))

	return ok, nil
}
