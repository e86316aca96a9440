package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggingConfig holds configuration for logging middleware
type LoggingConfig struct {
	Logger    *zerolog.Logger // Optional; the global logger is used when nil
	SkipPaths []string        // Paths to skip logging (e.g., /healthz)
}

// Logging writes one access log line per request.
// 4xx responses are logged at WARN, 5xx at ERROR.
func Logging(cfg LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		logger := log.Logger
		if cfg.Logger != nil {
			logger = *cfg.Logger
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Warn()
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Int("response_size", c.Writer.Size()).
			Str("ip", c.ClientIP())

		if len(c.Errors) > 0 {
			event.Str("error", c.Errors.String())
		}
		event.Msg("request completed")
	}
}

// Recovery turns a panic into a logged 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				log.Error().
					Str("request_id", requestID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", err).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal server error",
					"code":       "INTERNAL_SERVER_ERROR",
					"request_id": requestID,
				})
			}
		}()

		c.Next()
	}
}
