package auth

import (
	"errors"
	"fmt"
	"time"
)

// Outcomes reported to callers
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrRateLimited           = errors.New("rate limited")
)

// Store contract errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrTokenNotFound      = errors.New("token not found")
)

var ErrInvalidTier = errors.New("invalid membership tier")

// RateLimitError is returned when an operation's bucket is empty.
// It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	Operation string
	Wait      time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s, retry after %s", e.Operation, e.Wait)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfter returns how long the caller should wait before retrying.
func (e *RateLimitError) RetryAfter() time.Duration {
	return e.Wait
}
