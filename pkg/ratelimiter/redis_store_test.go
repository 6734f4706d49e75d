package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
)

func newRedisStore(t *testing.T, clock *fakeClock) (*ratelimiter.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix("test"), ratelimiter.WithRedisClock(clock.Now)), mr
}

func TestRedisStore_ConsumeTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	config := ratelimiter.Config{Capacity: 5, RefillPerSecond: 0.2}

	t.Run("burst then deny then refill", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store, mr := newRedisStore(t, clock)

		for i := range 5 {
			remaining, _, allowed, err := store.ConsumeTokens(ctx, "resend_verification:1.2.3.4", 1, config)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d", i+1)
			assert.InDelta(t, float64(4-i), remaining, 1e-9)
		}

		remaining, wait, allowed, err := store.ConsumeTokens(ctx, "resend_verification:1.2.3.4", 1, config)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.InDelta(t, 0.0, remaining, 1e-9)
		assert.Equal(t, 5*time.Second, wait)

		assert.True(t, mr.Exists("test:resend_verification:1.2.3.4"))
		assert.Equal(t, 26*time.Second, mr.TTL("test:resend_verification:1.2.3.4"))

		clock.Advance(2500 * time.Millisecond)
		remaining, _, allowed, err = store.ConsumeTokens(ctx, "resend_verification:1.2.3.4", 0, config)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.InDelta(t, 0.5, remaining, 1e-9)

		clock.Advance(2500 * time.Millisecond)
		_, _, allowed, err = store.ConsumeTokens(ctx, "resend_verification:1.2.3.4", 1, config)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store, mr := newRedisStore(t, clock)

		_, _, _, err := store.ConsumeTokens(ctx, "k", 5, config)
		require.NoError(t, err)
		require.NoError(t, store.Reset(ctx, "k"))
		assert.False(t, mr.Exists("test:k"))

		remaining, _, allowed, err := store.ConsumeTokens(ctx, "k", 1, config)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.InDelta(t, 4.0, remaining, 1e-9)
	})

	t.Run("server down surfaces as store failure", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store, mr := newRedisStore(t, clock)
		mr.Close()

		_, err := ratelimiter.NewLimiter(store).CheckAndConsume(ctx, "k", config)
		assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
	})
}
