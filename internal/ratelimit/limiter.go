// Package ratelimit implements a fixed-window request counter on Redis, used
// to throttle login attempts per client address.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter counts events per key in fixed windows. It fails open: when Redis
// is unreachable the action is allowed and the error logged, so an outage of
// the limiter never locks users out.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
}

// New returns a Limiter on the given client.
func New(client *redis.Client, logger *zap.Logger) *Limiter {
	return &Limiter{client: client, logger: logger}
}

// Allow records one event for key and reports whether the count within the
// current window is still at or under limit. A nil Limiter allows everything.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || limit <= 0 {
		return true
	}
	var count *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			zap.String("key", key), zap.Error(err))
		return true
	}
	return count.Val() <= int64(limit)
}
