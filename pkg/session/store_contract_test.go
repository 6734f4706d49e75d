package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgate/pkg/session"
	"github.com/dmitrymomot/authgate/pkg/token"
)

func newSession(userID uuid.UUID, expiresIn time.Duration) *session.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	s := &session.Session{
		TokenHash: token.Hash(token.MustGenerate()),
		UserID:    userID,
		CreatedAt: now,
	}
	if expiresIn != 0 {
		exp := now.Add(expiresIn)
		s.ExpiresAt = &exp
	}
	return s
}

// runStoreContract exercises the behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) session.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		s := newSession(uuid.New(), time.Hour)
		require.NoError(t, store.Create(ctx, s))

		got, err := store.Get(ctx, s.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, got.UserID)
		assert.Equal(t, s.TokenHash, got.TokenHash)
		assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, s.ExpiresAt.Equal(*got.ExpiresAt))
	})

	t.Run("session without expiry", func(t *testing.T) {
		store := newStore(t)
		s := newSession(uuid.New(), 0)
		require.NoError(t, store.Create(ctx, s))

		got, err := store.Get(ctx, s.TokenHash)
		require.NoError(t, err)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("missing session", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, token.Hash("nope"))
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("invalid session rejected", func(t *testing.T) {
		store := newStore(t)
		assert.ErrorIs(t, store.Create(ctx, &session.Session{UserID: uuid.New()}), session.ErrInvalidSession)
		assert.ErrorIs(t, store.Create(ctx, nil), session.ErrInvalidSession)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		s := newSession(uuid.New(), time.Hour)
		require.NoError(t, store.Create(ctx, s))

		require.NoError(t, store.Delete(ctx, s.TokenHash))
		require.NoError(t, store.Delete(ctx, s.TokenHash))

		_, err := store.Get(ctx, s.TokenHash)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("delete by user removes only that user", func(t *testing.T) {
		store := newStore(t)
		alice, bob := uuid.New(), uuid.New()

		var aliceSessions []*session.Session
		for range 3 {
			s := newSession(alice, time.Hour)
			require.NoError(t, store.Create(ctx, s))
			aliceSessions = append(aliceSessions, s)
		}
		bobSession := newSession(bob, time.Hour)
		require.NoError(t, store.Create(ctx, bobSession))

		require.NoError(t, store.DeleteByUserID(ctx, alice))
		require.NoError(t, store.DeleteByUserID(ctx, alice))

		for _, s := range aliceSessions {
			_, err := store.Get(ctx, s.TokenHash)
			assert.ErrorIs(t, err, session.ErrSessionNotFound)
		}
		_, err := store.Get(ctx, bobSession.TokenHash)
		assert.NoError(t, err)
	})
}
