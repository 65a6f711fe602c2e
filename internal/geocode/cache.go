package geocode

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carefinder/backend/internal/models"
)

// Cache memoizes forward geocode results by normalized address. Values are
// never mutated after Put, so a racing double fetch simply overwrites an
// equal entry.
type Cache interface {
	Get(ctx context.Context, key string) (models.GeocodeResult, bool)
	Put(ctx context.Context, key string, value models.GeocodeResult)
}

// Sizer and Purger are optional capabilities used by the admin endpoints.
type Sizer interface {
	Len(ctx context.Context) (int, error)
}

type Purger interface {
	Purge(ctx context.Context) error
}

// MemoryCache is an unbounded, process-lifetime map.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]models.GeocodeResult
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]models.GeocodeResult{}}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.GeocodeResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *MemoryCache) Put(_ context.Context, key string, value models.GeocodeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *MemoryCache) Len(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items), nil
}

func (c *MemoryCache) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]models.GeocodeResult{}
	return nil
}

// LRUCache bounds the number of cached addresses.
type LRUCache struct {
	lru *lru.Cache[string, models.GeocodeResult]
}

func NewLRUCache(size int) (*LRUCache, error) {
	l, err := lru.New[string, models.GeocodeResult](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: l}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (models.GeocodeResult, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Put(_ context.Context, key string, value models.GeocodeResult) {
	c.lru.Add(key, value)
}

func (c *LRUCache) Len(context.Context) (int, error) {
	return c.lru.Len(), nil
}

func (c *LRUCache) Purge(context.Context) error {
	c.lru.Purge()
	return nil
}

const redisKeyPrefix = "geocode:v1:"

// RedisCache shares forward geocode results between instances. Redis errors
// are treated as cache misses.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger zerolog.Logger
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.GeocodeResult, bool) {
	raw, err := c.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.Logger.Warn().Err(err).Msg("geocode cache read failed")
		}
		return models.GeocodeResult{}, false
	}
	var res models.GeocodeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return models.GeocodeResult{}, false
	}
	return res, true
}

func (c *RedisCache) Put(ctx context.Context, key string, value models.GeocodeResult) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, redisKeyPrefix+key, payload, c.TTL).Err(); err != nil {
		c.Logger.Warn().Err(err).Msg("geocode cache write failed")
	}
}

func (c *RedisCache) Len(ctx context.Context) (int, error) {
	n := 0
	iter := c.Client.Scan(ctx, 0, redisKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

func (c *RedisCache) Purge(ctx context.Context) error {
	iter := c.Client.Scan(ctx, 0, redisKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		if err := c.Client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
