package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"quote_backend/internal/platform/config"
	"quote_backend/internal/shared/ratelimiter"
)

// NewUpstreamLimiter creates a Limiter for outbound provider calls.
// If Redis is available, the window is shared across instances.
// Otherwise, it falls back to an in-process token bucket.
func NewUpstreamLimiter(rdb *redis.Client, cfg config.RateLimitConfig) ratelimiter.Limiter {
	if cfg.PerMinute <= 0 {
		return ratelimiter.Unlimited{}
	}
	if rdb != nil {
		return ratelimiter.NewRedisWindowLimiter(rdb, cfg.PerMinute, time.Minute, cfg.Namespace)
	}
	return ratelimiter.NewLocalLimiter(cfg.PerMinute, cfg.Burst)
}
