package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache layers Redis over a backing KV. Point reads and prefix scans are
// served from cache when possible; writes go straight through and evict the
// key plus every scan prefix that could contain it. Redis failures degrade to
// the backing store, never to an error.
type Cache struct {
	base  KV
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching KV wrapper using the provided Redis client and
// TTL. A zero TTL disables population; reads still fall through.
func NewCache(base KV, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string, out any) error {
	if data, ok := c.load(ctx, valueCacheKey(key)); ok {
		return json.Unmarshal(data, out)
	}
	if err := c.base.Get(ctx, key, out); err != nil {
		return err
	}
	c.store(ctx, valueCacheKey(key), out)
	return nil
}

func (c *Cache) Put(ctx context.Context, key string, value any) error {
	if err := c.base.Put(ctx, key, value); err != nil {
		return err
	}
	c.evict(ctx, key)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.base.Delete(ctx, key); err != nil {
		return err
	}
	c.evict(ctx, key)
	return nil
}

func (c *Cache) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	if data, ok := c.load(ctx, scanCacheKey(prefix)); ok {
		var records []Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		c.drop(ctx, scanCacheKey(prefix))
	}
	records, err := c.base.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	c.store(ctx, scanCacheKey(prefix), records)
	return records, nil
}

func (c *Cache) load(ctx context.Context, cacheKey string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			c.drop(ctx, cacheKey)
		}
		return nil, false
	}
	return data, true
}

func (c *Cache) store(ctx context.Context, cacheKey string, value any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey, data, c.ttl).Err()
}

func (c *Cache) drop(ctx context.Context, cacheKey string) {
	_ = c.redis.Del(ctx, cacheKey).Err()
}

// evict removes the cached value for key along with every scan prefix that
// could have contained it, derived from the key's segment boundaries.
func (c *Cache) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	keys := []string{valueCacheKey(key)}
	for _, p := range scanPrefixesOf(key) {
		keys = append(keys, scanCacheKey(p))
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

// scanPrefixesOf lists every segment-boundary prefix of a key, e.g.
// "task:u1:t1" yields "task:" and "task:u1:".
func scanPrefixesOf(key string) []string {
	var prefixes []string
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			prefixes = append(prefixes, key[:i+1])
		}
	}
	return prefixes
}

func valueCacheKey(key string) string {
	return "kv:" + key
}

func scanCacheKey(prefix string) string {
	return "scan:" + prefix
}
