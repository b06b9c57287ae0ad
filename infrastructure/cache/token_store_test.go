package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	t.Run("consume is one-shot", func(t *testing.T) {
		store := NewMemoryTokenStore(0)
		defer store.Close()
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "tok", "user-1", time.Minute))

		userId, err := store.Consume(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "user-1", userId)

		_, err = store.Consume(ctx, "tok")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("expired tokens are not consumable", func(t *testing.T) {
		store := NewMemoryTokenStore(0)
		defer store.Close()
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "tok", "user-1", -time.Second))

		_, err := store.Consume(ctx, "tok")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		store := NewMemoryTokenStore(0)
		defer store.Close()

		_, err := store.Consume(context.Background(), "never-stored")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewMemoryTokenStore(time.Minute)
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
	})
}

func TestRedisTokenStore(t *testing.T) {
	newStore := func(t *testing.T) (*miniredis.Miniredis, *RedisTokenStore) {
		t.Helper()
		mr := miniredis.RunT(t)
		store := NewRedisTokenStore(mr.Addr())
		t.Cleanup(func() { store.Close() })
		return mr, store
	}

	t.Run("consume is one-shot", func(t *testing.T) {
		_, store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "tok", "user-1", time.Minute))

		userId, err := store.Consume(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "user-1", userId)

		_, err = store.Consume(ctx, "tok")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("tokens expire with the TTL", func(t *testing.T) {
		mr, store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "tok", "user-1", time.Minute))
		mr.FastForward(2 * time.Minute)

		_, err := store.Consume(ctx, "tok")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("keys are namespaced", func(t *testing.T) {
		mr, store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "tok", "user-1", time.Minute))
		assert.True(t, mr.Exists("reset-token:tok"))
	})
}
