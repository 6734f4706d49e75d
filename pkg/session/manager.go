package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/token"
)

// Manager handles session operations on top of a Store.
type Manager struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// New creates a new session manager
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		ttl:    DefaultConfig().TTL,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create issues a new session for the user and returns its token.
// The token is returned only here; the store keeps its digest.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, *Session, error) {
	tok, err := token.Generate()
	if err != nil {
		return "", nil, errors.Join(ErrTokenGeneration, err)
	}

	now := m.now()
	sess := &Session{
		TokenHash: token.Hash(tok),
		UserID:    userID,
		CreatedAt: now,
	}
	if m.ttl > 0 {
		exp := now.Add(m.ttl)
		sess.ExpiresAt = &exp
	}

	if err := m.store.Create(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("session: create: %w", err)
	}

	return tok, sess, nil
}

// Resolve returns the live session for tok.
func (m *Manager) Resolve(ctx context.Context, tok string) (*Session, error) {
	if tok == "" {
		return nil, ErrSessionNotFound
	}

	sess, err := m.store.Get(ctx, token.Hash(tok))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session: resolve: %w", err)
	}

	if sess.IsExpired(m.now()) {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Destroy deletes the session for tok. Unknown tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token.Hash(tok)); err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// DestroyAll deletes every session of the user.
func (m *Manager) DestroyAll(ctx context.Context, userID uuid.UUID) error {
	if err := m.store.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("session: destroy all: %w", err)
	}
	return nil
}

// RunCleanup deletes expired sessions every interval until ctx is cancelled.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.DeleteExpired(ctx, m.now()); err != nil && ctx.Err() == nil {
				m.logger.ErrorContext(ctx, "failed to delete expired sessions",
					logger.Component("session"),
					logger.Error(err),
				)
			}
		}
	}
}
