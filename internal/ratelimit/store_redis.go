package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with a fixed window counter per key. INCR plus
// NX expiry keeps the whole check one round trip race-free across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().UnixNano()/int64(window))

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, bucket)
	pipe.ExpireNX(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit incr: %w", err)
	}

	n := int(count.Val())
	resetAt := time.Now().Add(window)
	if n > limit {
		return &Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return &Result{Allowed: true, Remaining: limit - n, ResetAt: resetAt}, nil
}
