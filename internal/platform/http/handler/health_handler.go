// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisPingTimeout = time.Second

// HealthHandler はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// Redisが設定されている場合は疎通も確認しますが、レート制限はRedis障害時にフェイルオープンするため
// 失敗しても200で "degraded" を返します。
type HealthHandler struct {
	rdb *redis.Client
}

// NewHealthHandler はHealthHandlerを生成します。rdbはnilでも構いません。
func NewHealthHandler(rdb *redis.Client) *HealthHandler {
	return &HealthHandler{rdb: rdb}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		body := gin.H{"status": "ok"}
		if h.rdb != nil {
			if err := h.pingRedis(c.Request.Context()); err != nil {
				log.Warn().Err(err).Msg("health: redis ping failed")
				body["status"] = "degraded"
				body["redis"] = "unreachable"
			} else {
				body["redis"] = "ok"
			}
		}
		c.JSON(http.StatusOK, body)
	}
}

func (h *HealthHandler) pingRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return h.rdb.Ping(ctx).Err()
}
