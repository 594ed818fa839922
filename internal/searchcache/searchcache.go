// Package searchcache is an optional Redis-backed cache for normalized search
// responses. Identical queries within the TTL skip the upstream call
// entirely. The service runs fine without it; a nil *Cache is a no-op.
package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// Cache wraps a Redis client with JSON serialization and TTL handling
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// New creates a search cache against the given Redis server
func New(addr, password string, db int, ttl time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		rdb: rdb,
		ttl: ttl,
		log: slog.Default().With(slog.String("component", "search_cache")),
	}
}

// Ping verifies the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// key builds the cache key for one provider/query pair. Queries are folded to
// lower case so "Dune" and "dune" share an entry.
func key(provider, query string) string {
	return fmt.Sprintf("search:%s:%s", provider, strings.ToLower(strings.TrimSpace(query)))
}

// Get loads a cached response into dest. Returns false on a miss. Cache
// errors are logged and reported as misses; the caller falls through to the
// upstream.
func (c *Cache) Get(ctx context.Context, provider, query string, dest interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.rdb.Get(ctx, key(provider, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordSearchCache(provider, "miss")
		return false
	}
	if err != nil {
		metrics.RecordSearchCache(provider, "error")
		c.log.Warn("cache read failed", slog.String("provider", provider), slog.Any("error", err))
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordSearchCache(provider, "error")
		c.log.Warn("cache entry undecodable", slog.String("provider", provider), slog.Any("error", err))
		return false
	}

	metrics.RecordSearchCache(provider, "hit")
	return true
}

// Set stores a normalized response under the provider/query key. Failures
// are logged, never surfaced; caching is best effort.
func (c *Cache) Set(ctx context.Context, provider, query string, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", slog.String("provider", provider), slog.Any("error", err))
		return
	}

	if err := c.rdb.Set(ctx, key(provider, query), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", slog.String("provider", provider), slog.Any("error", err))
	}
}
