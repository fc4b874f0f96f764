package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter counts requests per key in fixed one-minute windows shared
// by every server instance pointing at the same redis.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisClient connects to redis at addr.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// NewRedisLimiter allows perMinute requests per key and window.
func NewRedisLimiter(client redis.Cmdable, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RedisLimiter{
		client: client,
		limit:  int64(perMinute),
		window: time.Minute,
		prefix: "teamtask:ratelimit",
	}
}

func (l *RedisLimiter) windowKey(key string, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, now.Unix()/int64(l.window/time.Second))
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	windowKey := l.windowKey(key, now)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, windowKey)
		pipe.Expire(ctx, windowKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}

	if incr.Val() > l.limit {
		elapsed := time.Duration(now.UnixNano() % int64(l.window))
		return false, l.window - elapsed, nil
	}
	return true, 0, nil
}
