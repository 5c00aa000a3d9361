package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Throttle admits a key the first time it is offered.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryThrottle remembers admitted keys in a bounded LRU.
type MemoryThrottle struct {
	seen *LRU[string, struct{}]
}

// NewMemoryThrottle creates a throttle remembering up to maxKeys keys.
func NewMemoryThrottle(maxKeys int) *MemoryThrottle {
	return &MemoryThrottle{seen: NewLRU[string, struct{}](maxKeys)}
}

func (t *MemoryThrottle) Allow(_ context.Context, key string) (bool, error) {
	return !t.seen.Seen(key), nil
}

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisThrottle shares admitted keys between processes through Redis SETNX.
type RedisThrottle struct {
	client setNXer
	prefix string
	ttl    time.Duration
}

// NewRedisThrottle creates a throttle whose keys expire after ttl.
func NewRedisThrottle(client *redis.Client, prefix string, ttl time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, prefix: prefix, ttl: ttl}
}

func (t *RedisThrottle) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.prefix+key, 1, t.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis throttle %s: %w", key, err)
	}
	return ok, nil
}
