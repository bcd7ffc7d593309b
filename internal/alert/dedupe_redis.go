package alert

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisGate is a Gate backed by Redis, for deployments running more than one
// server instance against the same alert stream. SET NX with a TTL gives the
// same per-key atomicity as MemoryGate: the first caller to set the key wins,
// later callers are suppressed until the key expires.
type RedisGate struct {
	client *redis.Client
	prefix string
}

// NewRedisGate creates a RedisGate over an existing client. Keys are stored
// under the "dedupe:" prefix.
func NewRedisGate(client *redis.Client) *RedisGate {
	return &RedisGate{client: client, prefix: "dedupe:"}
}

// ShouldSend returns true when no live entry exists for key, atomically
// recording one with the given ttl. On a Redis error the gate fails open:
// a duplicate notification beats a silently lost alert.
func (g *RedisGate) ShouldSend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}
