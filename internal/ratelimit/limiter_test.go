package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SlidingWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit", func(t *testing.T) {
		limiter := New(NewInMemoryStore(), 3, time.Minute)

		for i := 0; i < 3; i++ {
			result, err := limiter.Allow(ctx, "203.0.113.9")
			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, 2-i, result.Remaining)
		}
	})

	t.Run("denies past the limit", func(t *testing.T) {
		limiter := New(NewInMemoryStore(), 2, time.Minute)
		for i := 0; i < 2; i++ {
			_, err := limiter.Allow(ctx, "203.0.113.9")
			require.NoError(t, err)
		}

		result, err := limiter.Allow(ctx, "203.0.113.9")
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Zero(t, result.Remaining)
		assert.False(t, result.ResetAt.IsZero())
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := New(NewInMemoryStore(), 1, time.Minute)

		first, err := limiter.Allow(ctx, "203.0.113.9")
		require.NoError(t, err)
		assert.True(t, first.Allowed)

		other, err := limiter.Allow(ctx, "198.51.100.4")
		require.NoError(t, err)
		assert.True(t, other.Allowed)

		again, err := limiter.Allow(ctx, "203.0.113.9")
		require.NoError(t, err)
		assert.False(t, again.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		store := NewInMemoryStore()
		limiter := New(store, 1, 30*time.Millisecond)

		first, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, first.Allowed)

		denied, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		require.False(t, denied.Allowed)

		time.Sleep(40 * time.Millisecond)

		again, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, again.Allowed)
	})
}
