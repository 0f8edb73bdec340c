package devserver

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/miportal/portal/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()
	key := academicCacheKey("subjects", "user-1")

	var missing []models.Subject
	assert.False(t, cache.Get(ctx, key, &missing))

	cache.Set(ctx, key, []models.Subject{{ID: "s1", Code: "MAT101", Name: "Álgebra Lineal", Credits: 5}})
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	var subjects []models.Subject
	require.True(t, cache.Get(ctx, key, &subjects))
	require.Len(t, subjects, 1)
	assert.Equal(t, "MAT101", subjects[0].Code)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, "key", []string{"a"})
	mr.FastForward(2 * time.Minute)

	var out []string
	assert.False(t, cache.Get(ctx, "key", &out))
}

func TestRedisCache_DiscardsCorruptEntry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	require.NoError(t, mr.Set("key", "{not json"))

	var out []string
	assert.False(t, cache.Get(context.Background(), "key", &out))
	assert.False(t, mr.Exists("key"))
}

func TestRedisCache_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), "redis://"+addr, time.Minute)
	assert.Error(t, err)

	_, err = NewRedisCache(context.Background(), "://bad", time.Minute)
	assert.Error(t, err)
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := newRedisCacheWithClient(context.Background(), redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	require.NoError(t, err)
	defer cache.Close()

	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}

func TestNoopCache(t *testing.T) {
	var cache Cache = noopCache{}
	cache.Set(context.Background(), "key", "value")

	var out string
	assert.False(t, cache.Get(context.Background(), "key", &out))
	assert.NoError(t, cache.Close())
}
