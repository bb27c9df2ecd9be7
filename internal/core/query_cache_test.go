package core

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

func TestQueryCacheServesRepeatQueriesFromCache(t *testing.T) {
	cache := NewQueryCache[int](time.Minute)
	var fetches atomic.Int32

	for i := 0; i < 3; i++ {
		value, err := cache.Do(context.Background(), "q", func(ctx context.Context) (int, error) {
			fetches.Add(1)
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, value)
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestQueryCacheExpiresEntries(t *testing.T) {
	cache := NewQueryCache[int](time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		fetches.Add(1)
		return 1, nil
	}

	_, err := cache.Do(context.Background(), "q", fetch)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = cache.Do(context.Background(), "q", fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())

	now = now.Add(2 * time.Second)
	_, err = cache.Do(context.Background(), "q", fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestQueryCacheJoinsInFlightFetch(t *testing.T) {
	cache := NewQueryCache[string](time.Minute)
	release := make(chan struct{})
	var fetches atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 4)
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Do(context.Background(), "q", fetch)
		}(i)
	}

	// Give the goroutines time to pile onto the same entry.
	require.Eventually(t, func() bool { return fetches.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load())
	for i, value := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", value)
	}
}

func TestQueryCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewQueryCache[int](time.Minute)
	var fetches atomic.Int32

	_, err := cache.Do(context.Background(), "q", func(ctx context.Context) (int, error) {
		fetches.Add(1)
		return 0, fmt.Errorf("upstream down")
	})
	require.Error(t, err)

	value, err := cache.Do(context.Background(), "q", func(ctx context.Context) (int, error) {
		fetches.Add(1)
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestQueryCacheInvalidateDropsEntries(t *testing.T) {
	cache := NewQueryCache[int](time.Minute)
	var fetches atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		fetches.Add(1)
		return 1, nil
	}

	_, err := cache.Do(context.Background(), "q", fetch)
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Do(context.Background(), "q", fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestQueryCacheJoinerHonorsContextCancel(t *testing.T) {
	cache := NewQueryCache[int](time.Minute)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = cache.Do(context.Background(), "q", func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cache.Do(ctx, "q", func(ctx context.Context) (int, error) { return 2, nil })
	require.ErrorIs(t, err, context.Canceled)
	close(release)
}
