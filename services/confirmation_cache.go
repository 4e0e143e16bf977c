package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache remembers confirmation results by session reference so repeated
// redirects and polls skip the provider round trip. It is an optimisation only;
// the payments table stays the source of truth.
type ResultCache interface {
	Get(ctx context.Context, sessionRef string) (*ConfirmationResult, bool)
	Set(ctx context.Context, sessionRef string, res *ConfirmationResult)
	Delete(ctx context.Context, sessionRef string)
}

type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResultCache returns nil when rdb is nil so the service runs uncached.
func NewResultCache(rdb *redis.Client, ttl time.Duration) ResultCache {
	if rdb == nil {
		return nil
	}
	return &RedisResultCache{rdb: rdb, ttl: ttl}
}

func cacheKey(sessionRef string) string {
	return "payment-confirmation:" + sessionRef
}

func (c *RedisResultCache) Get(ctx context.Context, sessionRef string) (*ConfirmationResult, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(sessionRef)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Confirmation cache read failed", "session_id", sessionRef, "error", err)
		}
		return nil, false
	}

	var res ConfirmationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		slog.Warn("Discarding unreadable cached confirmation", "session_id", sessionRef, "error", err)
		return nil, false
	}
	return &res, true
}

func (c *RedisResultCache) Set(ctx context.Context, sessionRef string, res *ConfirmationResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(sessionRef), raw, c.ttl).Err(); err != nil {
		slog.Warn("Confirmation cache write failed", "session_id", sessionRef, "error", err)
	}
}

func (c *RedisResultCache) Delete(ctx context.Context, sessionRef string) {
	if err := c.rdb.Del(ctx, cacheKey(sessionRef)).Err(); err != nil {
		slog.Warn("Confirmation cache delete failed", "session_id", sessionRef, "error", err)
	}
}
