package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/stockflow/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store whose clock is advanced by the returned func
func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, func(time.Duration)) {
	t.Helper()
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	return store, func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		store, _ := newTestStore(t)

		ok, err := store.MarkProcessed(ctx, "POST /api/v1/sales-orders:abc", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkProcessed(ctx, "POST /api/v1/sales-orders:abc", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		store, advance := newTestStore(t)

		ok, _ := store.MarkProcessed(ctx, "k", time.Minute)
		require.True(t, ok)

		advance(time.Minute)
		ok, err := store.MarkProcessed(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("released claim can be taken again", func(t *testing.T) {
		store, _ := newTestStore(t)

		ok, _ := store.MarkProcessed(ctx, "k", time.Hour)
		require.True(t, ok)
		require.NoError(t, store.Release(ctx, "k"))

		ok, err := store.MarkProcessed(ctx, "k", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("concurrent claims have one winner", func(t *testing.T) {
		store, _ := newTestStore(t)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := store.MarkProcessed(ctx, "contended", time.Hour); ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, advance := newTestStore(t)

	processed, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)

	_, _ = store.MarkProcessed(ctx, "k", time.Minute)
	processed, _ = store.IsProcessed(ctx, "k")
	assert.True(t, processed)

	advance(2 * time.Minute)
	processed, _ = store.IsProcessed(ctx, "k")
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, advance := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, _ = store.MarkProcessed(ctx, fmt.Sprintf("short-%d", i), time.Minute)
	}
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	require.Equal(t, 6, store.Size())

	advance(10 * time.Minute)
	store.sweep()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestIdempotencyStoreFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "memory"}).CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis backend without a client falls back", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "redis"}).CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis backend without fallback fails", func(t *testing.T) {
		_, err := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "redis"},
			WithInMemoryFallback(false)).CreateStore(ctx)
		assert.Error(t, err)
	})
}
