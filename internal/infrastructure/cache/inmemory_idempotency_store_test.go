package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new update as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "1001", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("rejects redelivered update", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "1002", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "1002", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("accepts update again after expiration", func(t *testing.T) {
		now := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
		s := NewInMemoryIdempotencyStore(time.Hour)
		defer s.Close()
		s.now = func() time.Time { return now }

		isNew, err := s.MarkProcessed(ctx, "1003", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)

		now = now.Add(2 * time.Minute)
		isNew, err = s.MarkProcessed(ctx, "1003", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	now := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	store.now = func() time.Time { return now }

	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "1")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "1", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "1")
	require.NoError(t, err)
	assert.True(t, processed)

	now = now.Add(time.Minute)
	processed, err = store.IsProcessed(ctx, "1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_PurgeExpired(t *testing.T) {
	now := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	now = now.Add(2 * time.Minute)
	store.purgeExpired()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_Concurrent(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	ctx := context.Background()
	var accepted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "same-update", time.Hour)
			if err == nil && isNew {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	for i := 0; i < 3; i++ {
		_, _ = store.MarkProcessed(context.Background(), fmt.Sprint(i), time.Hour)
	}
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
