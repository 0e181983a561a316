// Package cache is a best-effort Redis existence cache in front of the
// blacklist store. A cache failure is never an answer: the caller falls back
// to the store, so the cache can only speed up the hot path, not corrupt it.
package cache

import (
	"context"
	"log/slog"
	"time"

	"mintgate/internal/platform/redis"
	"mintgate/pkg/domain"
)

const keyPrefix = "bl:"

// Cache caches blacklist existence answers with a short TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates the cache. A nil client yields a cache that never answers.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func key(address domain.Address) string {
	return keyPrefix + address.String()
}

// Probe returns the cached answer for an address. known is false on a miss or
// any cache failure.
func (c *Cache) Probe(ctx context.Context, address domain.Address) (listed, known bool) {
	if c == nil || c.client == nil {
		return false, false
	}
	val, err := c.client.Get(ctx, key(address)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// Store caches an existence answer.
func (c *Cache) Store(ctx context.Context, address domain.Address, listed bool) {
	if c == nil || c.client == nil {
		return
	}
	val := "0"
	if listed {
		val = "1"
	}
	if err := c.client.Set(ctx, key(address), val, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "blacklist cache write failed", "error", err)
	}
}

// Forget drops a cached answer. Called on every blacklist mutation so the
// cache never serves a stale answer past the mutation, only past the TTL.
func (c *Cache) Forget(ctx context.Context, address domain.Address) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(address)).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "blacklist cache invalidation failed", "error", err)
	}
}
