package ratelimiter

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
type Store interface {
	// ConsumeTokens refills the bucket for key and then tries to take n tokens from it.
	// With n == 0 it only reports the state. When the bucket holds fewer than n tokens
	// nothing is taken, allowed is false and retryAfter tells how long to wait.
	ConsumeTokens(ctx context.Context, key string, n int, config Config) (remaining float64, retryAfter time.Duration, allowed bool, err error)

	// Reset clears the rate limit state for the given key.
	Reset(ctx context.Context, key string) error
}
