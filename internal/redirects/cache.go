package redirects

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/openmeet/backend/pkg/redis"
)

// Cache is a JSON read-through cache for redirect lookups, which run on every
// public page view. A nil *Cache is a valid always-miss cache, and any redis
// failure degrades to a miss; the database stays the source of truth.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a redirect cache. Returns nil when rdb is nil or ttl is zero,
// which disables caching.
func NewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Cache) get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("redirect cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, val any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redirect cache write failed", zap.String("key", key), zap.Error(err))
	}
}
