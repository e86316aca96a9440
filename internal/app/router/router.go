// Package router wires HTTP routes and middleware.
package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	quotehandler "quote_backend/internal/feature/quote/transport/handler"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/http/handler"
	"quote_backend/internal/platform/http/middleware"
)

const healthPath = "/healthz"

func NewRouter(cfg config.CORSConfig, health *handler.HealthHandler, quotes *quotehandler.QuoteHandler) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(middleware.LoggingConfig{SkipPaths: []string{healthPath}}))
	r.Use(middleware.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	// 導通確認用
	r.GET(healthPath, health.Health)
	r.HEAD(healthPath, health.Health)
	r.OPTIONS(healthPath, health.Health)

	r.GET("/stocks/:ticker", quotes.GetQuote)
	// フロントエンドが呼び出すパス
	r.GET("/api/stocks/:ticker", quotes.GetQuote)

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// "*" はAllowOriginsと併用できない
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return c
}
