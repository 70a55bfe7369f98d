package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache is a redis-backed response cache for public reads. A nil client
// disables it: every Get misses and Set/Invalidate are no-ops.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a cache using the given key prefix and entry TTL
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Key builds a cache key from parts under the cache prefix
func (c *Cache) Key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

// Get unmarshals a cached value into dest, reporting whether it was found
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

// Set stores value under key with the configured TTL. Failures are logged
// and swallowed: the cache is never allowed to fail a request.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
	}
}

// Invalidate removes every entry under the cache prefix. Called after each
// mutation so public reads never serve stale events.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+":*", 100).Result()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to scan cache keys")
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to invalidate cache keys")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
