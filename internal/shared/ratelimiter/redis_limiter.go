package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisWindowLimiter は複数インスタンスで共有される固定ウィンドウのカウンタで
// 呼び出し頻度を制限します。キーは "{namespace}:{ウィンドウ開始UNIX秒}" です。
//
// Redisが失敗した場合は制限せずに通します（fail open）。
type RedisWindowLimiter struct {
	rdb       *redis.Client
	limit     int64
	window    time.Duration
	namespace string
	now       func() time.Time
}

// NewRedisWindowLimiter creates a limiter allowing limit calls per window.
// If window is 0 it defaults to one minute; if namespace is empty it uses "ratelimit:upstream".
func NewRedisWindowLimiter(rdb *redis.Client, limit int, window time.Duration, namespace string) *RedisWindowLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if namespace == "" {
		namespace = "ratelimit:upstream"
	}
	return &RedisWindowLimiter{
		rdb:       rdb,
		limit:     int64(limit),
		window:    window,
		namespace: namespace,
		now:       time.Now,
	}
}

// Wait implements Limiter.
func (r *RedisWindowLimiter) Wait(ctx context.Context) error {
	if r.rdb == nil || r.limit <= 0 {
		return ctx.Err()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := r.now().Truncate(r.window)
		key := r.key(start)

		n, err := r.rdb.Incr(ctx, key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable, allowing call")
			return nil
		}
		if n == 1 {
			// 次のウィンドウ以降にキーが残らないよう余裕を持たせて期限を設定
			if err := r.rdb.Expire(ctx, key, 2*r.window).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to set rate limit expiry")
			}
		}
		if n <= r.limit {
			return nil
		}

		wait := start.Add(r.window).Sub(r.now())
		if wait <= 0 {
			continue
		}
		log.Debug().Int64("limit", r.limit).Dur("wait", wait).Msg("upstream rate limit reached, waiting")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RedisWindowLimiter) key(windowStart time.Time) string {
	return fmt.Sprintf("%s:%d", r.namespace, windowStart.Unix())
}
