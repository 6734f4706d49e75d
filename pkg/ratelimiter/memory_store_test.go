package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_ConsumeTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	config := ratelimiter.Config{Capacity: 10, RefillPerSecond: 2}

	t.Run("creates new bucket with full capacity", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		defer store.Close()

		remaining, wait, allowed, err := store.ConsumeTokens(ctx, "new-key", 3, config)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 7.0, remaining)
		assert.Zero(t, wait)
	})

	t.Run("denies without consuming when short", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
		defer store.Close()

		_, _, allowed, err := store.ConsumeTokens(ctx, "k", 9, config)
		require.NoError(t, err)
		require.True(t, allowed)

		remaining, wait, allowed, err := store.ConsumeTokens(ctx, "k", 2, config)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 1.0, remaining)
		assert.Equal(t, time.Second, wait)

		remaining, _, allowed, err = store.ConsumeTokens(ctx, "k", 1, config)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 0.0, remaining)
	})

	t.Run("refills lazily up to capacity", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
		defer store.Close()

		_, _, _, err := store.ConsumeTokens(ctx, "k", 10, config)
		require.NoError(t, err)

		clock.Advance(1500 * time.Millisecond)
		remaining, _, allowed, err := store.ConsumeTokens(ctx, "k", 0, config)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.InDelta(t, 3.0, remaining, 1e-9)

		clock.Advance(time.Hour)
		remaining, _, _, err = store.ConsumeTokens(ctx, "k", 0, config)
		require.NoError(t, err)
		assert.Equal(t, 10.0, remaining)
	})

	t.Run("clock moving backwards adds nothing", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
		defer store.Close()

		_, _, _, err := store.ConsumeTokens(ctx, "k", 10, config)
		require.NoError(t, err)

		clock.Advance(-time.Minute)
		_, _, allowed, err := store.ConsumeTokens(ctx, "k", 1, config)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		defer store.Close()

		_, _, _, err := store.ConsumeTokens(ctx, "a", 10, config)
		require.NoError(t, err)

		remaining, _, allowed, err := store.ConsumeTokens(ctx, "b", 1, config)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 9.0, remaining)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		defer store.Close()

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, _, _, err := store.ConsumeTokens(cctx, "k", 1, config)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryStore_ResetAndCleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	config := ratelimiter.Config{Capacity: 2, RefillPerSecond: 1}
	clock := newFakeClock()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
	defer store.Close()

	_, _, _, err := store.ConsumeTokens(ctx, "old", 2, config)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx, "old"))

	remaining, _, allowed, err := store.ConsumeTokens(ctx, "old", 1, config)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1.0, remaining)

	clock.Advance(2 * time.Hour)
	_, _, _, err = store.ConsumeTokens(ctx, "fresh", 1, config)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	store.RemoveStale()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(10 * time.Millisecond))
	store.Close()
	assert.NotPanics(t, store.Close)
}
