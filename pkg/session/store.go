package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token digest, ErrSessionNotFound when absent
	Get(ctx context.Context, tokenHash string) (*Session, error)

	// Delete removes a session by token digest; deleting a missing session is not an error
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes every session of the user in a single atomic step
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes sessions that expired before now
	DeleteExpired(ctx context.Context, now time.Time) error
}
