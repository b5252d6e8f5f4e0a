package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache[string]()

	t.Run("miss on unknown key", func(t *testing.T) {
		_, err := c.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", "v", time.Millisecond))
		time.Sleep(5 * time.Millisecond)
		_, err := c.Get(ctx, "short")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", "v", time.Minute))
		require.NoError(t, c.Delete(ctx, "gone"))
		_, err := c.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("health and close", func(t *testing.T) {
		assert.NoError(t, c.Health(ctx))
		assert.NoError(t, c.Close())
	})
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache[string]()

	t.Run("set is discarded", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("every read fetches through", func(t *testing.T) {
		calls := 0
		fetch := func(ctx context.Context, key string) (string, error) {
			calls++
			return "fresh", nil
		}
		for i := 0; i < 3; i++ {
			got, err := GetWithFetch(ctx, c, "k", time.Minute, fetch)
			require.NoError(t, err)
			assert.Equal(t, "fresh", got)
		}
		assert.Equal(t, 3, calls)
	})

	t.Run("delete, health and close are no-ops", func(t *testing.T) {
		assert.NoError(t, c.Delete(ctx, "k"))
		assert.NoError(t, c.Health(ctx))
		assert.NoError(t, c.Close())
	})
}

func TestGetWithFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch on miss, cached afterwards", func(t *testing.T) {
		c := NewMemoryCache[int]()
		calls := 0
		fetch := func(ctx context.Context, key string) (int, error) {
			calls++
			return 42, nil
		}

		got, err := GetWithFetch(ctx, c, "answer", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, 42, got)

		got, err = GetWithFetch(ctx, c, "answer", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 1, calls, "second read should hit the cache")
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		c := NewMemoryCache[int]()
		wantErr := errors.New("backend down")
		_, err := GetWithFetch(ctx, c, "k", time.Minute,
			func(ctx context.Context, key string) (int, error) {
				return 0, wantErr
			})
		assert.ErrorIs(t, err, wantErr)
	})
}
