package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgate/pkg/session"
	"github.com/dmitrymomot/authgate/pkg/token"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newManager(t *testing.T, ttl time.Duration) (*session.Manager, *session.MemoryStore, *testClock) {
	t.Helper()

	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return session.New(store, session.WithTTL(ttl), session.WithClock(clock.Now)), store, clock
}

func TestManager_CreateResolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr, store, clock := newManager(t, time.Hour)
	userID := uuid.New()

	tok, sess, err := mgr.Create(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, tok, 43)
	assert.Equal(t, token.Hash(tok), sess.TokenHash)
	require.NotNil(t, sess.ExpiresAt)
	assert.Equal(t, clock.now.Add(time.Hour), *sess.ExpiresAt)

	// the store never sees the raw token
	_, err = store.Get(ctx, tok)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	got, err := mgr.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	_, err = mgr.Resolve(ctx, "")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = mgr.Resolve(ctx, token.MustGenerate())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_ExpiryWithoutRenewal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr, _, clock := newManager(t, time.Hour)

	tok, _, err := mgr.Create(ctx, uuid.New())
	require.NoError(t, err)

	clock.now = clock.now.Add(59 * time.Minute)
	_, err = mgr.Resolve(ctx, tok)
	require.NoError(t, err)

	// resolving must not have pushed the expiry forward
	clock.now = clock.now.Add(time.Minute)
	_, err = mgr.Resolve(ctx, tok)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_NoExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr, _, clock := newManager(t, 0)

	tok, sess, err := mgr.Create(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, sess.ExpiresAt)

	clock.now = clock.now.AddDate(10, 0, 0)
	_, err = mgr.Resolve(ctx, tok)
	assert.NoError(t, err)
}

func TestManager_DestroyIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr, _, _ := newManager(t, time.Hour)

	tok, _, err := mgr.Create(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, mgr.Destroy(ctx, tok))
	require.NoError(t, mgr.Destroy(ctx, tok))
	require.NoError(t, mgr.Destroy(ctx, ""))

	_, err = mgr.Resolve(ctx, tok)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_DestroyAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr, _, _ := newManager(t, time.Hour)
	userID, otherID := uuid.New(), uuid.New()

	var tokens []string
	for range 3 {
		tok, _, err := mgr.Create(ctx, userID)
		require.NoError(t, err)
		tokens = append(tokens, tok)
	}
	other, _, err := mgr.Create(ctx, otherID)
	require.NoError(t, err)

	require.NoError(t, mgr.DestroyAll(ctx, userID))

	for _, tok := range tokens {
		_, err := mgr.Resolve(ctx, tok)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	}
	_, err = mgr.Resolve(ctx, other)
	assert.NoError(t, err)
}

type brokenStore struct {
	session.Store
	err error
}

func (s brokenStore) Get(context.Context, string) (*session.Session, error) { return nil, s.err }

func TestManager_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	down := errors.New("connection reset")
	mgr := session.New(brokenStore{err: down})

	_, err := mgr.Resolve(context.Background(), token.MustGenerate())
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_RunCleanup(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	defer store.Close()

	mgr := session.New(store, session.WithTTL(time.Millisecond))
	_, _, err := mgr.Create(context.Background(), uuid.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.RunCleanup(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
