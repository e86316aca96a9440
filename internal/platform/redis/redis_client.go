// Package redis opens the optional Redis connection.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"quote_backend/internal/platform/config"
)

// NewRedisClient はRedisへ接続し、疎通確認をしたクライアントを返します。
// 呼び出し側はエラー時にRedis無しで動作を継続できます。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error().Err(err).Str("address", cfg.Addr()).Msg("Redis connection failed")
		_ = rdb.Close()
		return nil, err
	}

	log.Info().Str("address", cfg.Addr()).Msg("Redis connection successful")
	return rdb, nil
}
