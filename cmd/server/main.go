package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"quote_backend/internal/app/di"
	"quote_backend/internal/app/router"
	"quote_backend/internal/feature/quote/adapters"
	quotehandler "quote_backend/internal/feature/quote/transport/handler"
	"quote_backend/internal/feature/quote/usecase"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/http/handler"
	"quote_backend/internal/platform/logger"
	infraredis "quote_backend/internal/platform/redis"
)

const (
	serviceName    = "quote-backend"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	gin.SetMode(cfg.Server.Mode)

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(context.Background(), cfg.Redis); err != nil {
			log.Warn().Msg("Redis unavailable. Falling back to in-process rate limiting.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close Redis client")
				}
			}()
		}
	}

	// Provider
	market, err := di.NewMarket(cfg.Quote)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create market data provider")
	}
	limiter := di.NewUpstreamLimiter(rdb, cfg.RateLimit)
	provider := adapters.NewRateLimitedProvider(market, limiter)

	// Usecase
	quoteUC := usecase.NewQuoteUsecase(provider, cfg.Quote.LookupTimeout)

	// Handler
	quoteH := quotehandler.NewQuoteHandler(quoteUC)
	healthH := handler.NewHealthHandler(rdb)

	// ルータ生成
	r := router.NewRouter(cfg.CORS, healthH, quoteH)

	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("provider", cfg.Quote.Provider).
			Bool("redis", rdb != nil).
			Msg("Starting quote server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
