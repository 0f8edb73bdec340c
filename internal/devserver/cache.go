package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultCacheTTL = 5 * time.Minute

// Cache is a best effort read cache. Misses and failures look the same to
// callers.
type Cache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, value any)
	Close() error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) bool { return false }
func (noopCache) Set(context.Context, string, any)      {}
func (noopCache) Close() error                          { return nil }

// RedisCache stores JSON encoded values with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to url (redis://host:port/db) and checks the
// connection.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return newRedisCacheWithClient(ctx, redis.NewClient(opts), ttl)
}

func newRedisCacheWithClient(ctx context.Context, client *redis.Client, ttl time.Duration) (*RedisCache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, out any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	} else if err != nil {
		logrus.WithError(err).WithField("key", key).Warnln("Cache read failed")
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		logrus.WithError(err).WithField("key", key).Warnln("Discarding unreadable cache entry")
		c.client.Del(ctx, key)
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warnln("Cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warnln("Cache write failed")
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func academicCacheKey(collection, userID string) string {
	return fmt.Sprintf("miportal:academic:%s:%s", collection, userID)
}
