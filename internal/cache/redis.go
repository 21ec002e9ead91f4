package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"shipstream/internal/port"
)

const redisKeyPrefix = "shipstream:mapping:"

// RedisCache is a Redis-backed port.MappingCache for deployments where multiple
// instances should share AI header resolutions. TTL is delegated to Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a mapping cache on top of an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, header string) (*port.CachedMapping, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+header).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache.RedisCache.Get: %v", err)
		}
		return nil, false
	}
	var mapping port.CachedMapping
	if err := json.Unmarshal(raw, &mapping); err != nil {
		log.Printf("cache.RedisCache.Get: corrupt entry for %q: %v", header, err)
		return nil, false
	}
	return &mapping, true
}

func (c *RedisCache) Set(ctx context.Context, header string, mapping port.CachedMapping, ttl time.Duration) {
	raw, err := json.Marshal(mapping)
	if err != nil {
		log.Printf("cache.RedisCache.Set: marshaling entry for %q: %v", header, err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+header, raw, ttl).Err(); err != nil {
		log.Printf("cache.RedisCache.Set: %v", err)
	}
}
