package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// generationPrefix namespaces the counters versioning cached keys
	generationPrefix = CacheKeyPrefix + "gen:"
	// DefaultCacheTTL bounds how stale a cached read may get if an
	// invalidation is missed.
	DefaultCacheTTL = 5 * time.Minute
)

// Cache stores JSON values in Redis. A nil *Cache is valid and caches nothing.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get decodes the cached value into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, CacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, CacheKeyPrefix+key, data, c.ttl).Err()
}

// Generation returns the current version of namespace ns. Keys built from it
// stop being read once Bump moves the namespace on, so a fill that raced an
// invalidation can only land under a retired key.
func (c *Cache) Generation(ctx context.Context, ns string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	gen, err := c.rdb.Get(ctx, generationPrefix+ns).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Bump retires every key built from the current generation of ns.
func (c *Cache) Bump(ctx context.Context, ns string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Incr(ctx, generationPrefix+ns).Err()
}
