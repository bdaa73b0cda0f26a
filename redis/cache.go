package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON read cache with version-key invalidation: readers
// build keys from the current version, writers bump the version so
// every later read misses and refetches. All methods degrade to
// no-ops when Redis is unavailable.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get unmarshals the cached value into dest and reports whether the
// key was present.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// GetVersion returns the current data version for a version key, 0
// when unset.
func (c *Cache) GetVersion(ctx context.Context, key string) int64 {
	if c.client == nil {
		return 0
	}
	v, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion bumps a version key so any new fetch sees new data.
func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	c.client.Incr(ctx, key)
}
