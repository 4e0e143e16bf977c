package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not answer;
// callers treat a nil client as "caching disabled".
func ConnectRedis(addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, confirmation cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Could not connect to Redis, confirmation cache disabled", "error", err)
		_ = rdb.Close()
		return nil
	}

	slog.Info("✅ Connected to Redis", "addr", addr)
	return rdb
}
