package idempotency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard tracks seen keys in Redis so deduplication survives
// restarts and is shared across instances.
type RedisGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisGuard wraps an existing Redis client.
func NewRedisGuard(client *redis.Client, prefix string) *RedisGuard {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "webhook"
	}
	return &RedisGuard{client: client, prefix: prefix}
}

// ShouldProcess reports true when the key has no live Redis entry.
// Redis errors fail open, a lost dedupe hint only costs a redundant
// reconcile pass.
func (g *RedisGuard) ShouldProcess(ctx context.Context, key string) (bool, error) {
	if key == "" || g.client == nil {
		return true, nil
	}
	n, err := g.client.Exists(ctx, g.buildKey(key)).Result()
	if err != nil {
		return true, err
	}
	return n == 0, nil
}

// MarkProcessed stores the key with the given TTL. SetNX keeps the
// original deadline when two workers race on the same notification.
func (g *RedisGuard) MarkProcessed(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" || ttl <= 0 || g.client == nil {
		return nil
	}
	return g.client.SetNX(ctx, g.buildKey(key), 1, ttl).Err()
}

func (g *RedisGuard) buildKey(key string) string {
	return fmt.Sprintf("%s:dedupe:%s", g.prefix, key)
}
