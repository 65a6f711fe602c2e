package geocode

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/backend/internal/models"
)

func TestMemoryCacheGetPut(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	_, ok := c.Get(ctx, "mumbai")
	assert.False(t, ok)

	c.Put(ctx, "mumbai", models.GeocodeResult{City: "Mumbai"})
	got, ok := c.Get(ctx, "mumbai")
	require.True(t, ok)
	assert.Equal(t, "Mumbai", got.City)

	require.NoError(t, c.Purge(ctx))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("addr-%d", i%8)
			c.Put(ctx, key, models.GeocodeResult{City: key})
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	n, _ := c.Len(ctx)
	assert.Equal(t, 8, n)
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRUCache(2)
	require.NoError(t, err)

	c.Put(ctx, "a", models.GeocodeResult{City: "A"})
	c.Put(ctx, "b", models.GeocodeResult{City: "B"})
	c.Put(ctx, "c", models.GeocodeResult{City: "C"})

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	got, ok := c.Get(ctx, "c")
	require.True(t, ok)
	assert.Equal(t, "C", got.City)
	n, _ := c.Len(ctx)
	assert.Equal(t, 2, n)
}

func TestLRUCacheRejectsNonPositiveSize(t *testing.T) {
	_, err := NewLRUCache(0)
	assert.Error(t, err)
}

func TestRedisCacheIntegration(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	cache := &RedisCache{Client: client, TTL: time.Minute, Logger: zerolog.Nop()}
	require.NoError(t, cache.Purge(ctx))

	_, ok := cache.Get(ctx, "mg road, bengaluru")
	assert.False(t, ok)

	want := models.GeocodeResult{City: "Bengaluru", Region: "Karnataka", Provider: "nominatim"}
	cache.Put(ctx, "mg road, bengaluru", want)
	got, ok := cache.Get(ctx, "mg road, bengaluru")
	require.True(t, ok)
	assert.Equal(t, want, got)

	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, cache.Purge(ctx))
	n, err = cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
