package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Limiter checks arbitrary keys against a configuration supplied per call.
// It is the form used by services that guard several operations with different budgets.
type Limiter struct {
	store Store
}

// NewLimiter creates a limiter over the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// CheckAndConsume refills the bucket for key and takes one token when available.
func (l *Limiter) CheckAndConsume(ctx context.Context, key string, config Config) (*Result, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return consume(ctx, l.store, key, 1, config)
}

// Bucket is a limiter bound to a single configuration.
type Bucket struct {
	store  Store
	config Config
}

// NewBucket creates a new token bucket rate limiter.
func NewBucket(store Store, config Config) (*Bucket, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Bucket{
		store:  store,
		config: config,
	}, nil
}

// Allow takes a single token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key, all or nothing.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	return consume(ctx, b.store, key, n, b.config)
}

// Status returns the current state without consuming tokens.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return consume(ctx, b.store, key, 0, b.config)
}

// Reset drops the state for key, giving it a full bucket on next use.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

// Config returns the bucket configuration.
func (b *Bucket) Config() Config {
	return b.config
}

func consume(ctx context.Context, store Store, key string, n int, config Config) (*Result, error) {
	remaining, wait, allowed, err := store.ConsumeTokens(ctx, key, n, config)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return &Result{
		Allowed:    allowed,
		Limit:      config.Capacity,
		Remaining:  int(math.Floor(remaining)),
		RetryAfter: wait,
	}, nil
}
