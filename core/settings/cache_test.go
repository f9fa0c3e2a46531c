package settings

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheValues(t *testing.T) {
	var calls int32
	load := func(ctx context.Context) ([]Setting, error) {
		atomic.AddInt32(&calls, 1)
		return []Setting{
			{Key: "store_name", Value: sql.NullString{String: "Aura Store", Valid: true}},
			{Key: "footer_text", Value: sql.NullString{}},
		}, nil
	}

	c := NewCache(load, time.Hour)

	vals, err := c.Values(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Aura Store", vals["store_name"])
	assert.Equal(t, "", vals["footer_text"], "null values surface as empty strings")

	_, err = c.Values(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second read within the TTL hits the cache")
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	var calls int32
	gate := make(chan struct{})
	load := func(ctx context.Context) ([]Setting, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return []Setting{}, nil
	}

	c := NewCache(load, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Values(context.Background())
			assert.NoError(t, err)
		}()
	}

	// Give the goroutines a moment to pile up on the same flight.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent misses must share one load")
}

func TestCacheInvalidate(t *testing.T) {
	var calls int32
	load := func(ctx context.Context) ([]Setting, error) {
		atomic.AddInt32(&calls, 1)
		return []Setting{}, nil
	}

	c := NewCache(load, time.Hour)

	_, err := c.Values(context.Background())
	require.NoError(t, err)

	c.Invalidate()

	_, err = c.Values(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheLoadFailure(t *testing.T) {
	load := func(ctx context.Context) ([]Setting, error) {
		return nil, errors.New("db down")
	}

	c := NewCache(load, time.Hour)

	_, err := c.Values(context.Background())
	assert.Error(t, err)
}
