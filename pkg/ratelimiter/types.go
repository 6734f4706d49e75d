package ratelimiter

import (
	"fmt"
	"math"
	"time"
)

// Config defines the token bucket configuration.
type Config struct {
	Capacity        int     // Maximum tokens the bucket can hold (burst limit)
	RefillPerSecond float64 // Tokens added per second, may be fractional
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillPerSecond <= 0 || math.IsNaN(c.RefillPerSecond) || math.IsInf(c.RefillPerSecond, 0) {
		return fmt.Errorf("%w: refill rate must be positive, got %v", ErrInvalidConfig, c.RefillPerSecond)
	}
	return nil
}

// Result contains the result of a rate limit check.
type Result struct {
	Allowed    bool          // Whether the tokens were consumed
	Limit      int           // Bucket capacity
	Remaining  int           // Whole tokens left after the check
	RetryAfter time.Duration // Zero when allowed
}

// RetryAfterMs returns the retry hint in whole milliseconds, rounded up.
func (r *Result) RetryAfterMs() int64 {
	if r.Allowed || r.RetryAfter <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(r.RetryAfter) / float64(time.Millisecond)))
}

// retryAfter returns how long a bucket refilling at rate needs to accumulate n tokens.
func retryAfter(n int, rate float64) time.Duration {
	ms := math.Ceil(float64(n) * 1000 / rate)
	return time.Duration(ms) * time.Millisecond
}
