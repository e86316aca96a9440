// Package config loads the server configuration from .env and the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Redis     RedisConfig
	Quote     QuoteConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port            string
	Mode            string // gin mode: debug, release, test
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level         string
	Format        string
	FileEnabled   bool
	FilePath      string
	RotationSize  int // MB
	RetentionDays int
}

// RedisConfig is optional; an empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type QuoteConfig struct {
	Provider      string        // yahoo, twelvedata
	LookupTimeout time.Duration // per outbound provider call
}

// RateLimitConfig bounds outbound provider calls. PerMinute <= 0 disables limiting.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	Namespace string
}

type CORSConfig struct {
	AllowOrigins []string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Mode:            getEnv("GIN_MODE", "release"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "json"),
			FileEnabled:   getBool("LOG_FILE_ENABLED", false),
			FilePath:      getEnv("LOG_FILE_PATH", "./logs"),
			RotationSize:  getInt("LOG_ROTATION_SIZE_MB", 100),
			RetentionDays: getInt("LOG_RETENTION_DAYS", 7),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Quote: QuoteConfig{
			Provider:      strings.ToLower(getEnv("MARKET_DATA_PROVIDER", "yahoo")),
			LookupTimeout: getDuration("QUOTE_LOOKUP_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getInt("UPSTREAM_RATE_PER_MINUTE", 60),
			Burst:     getInt("UPSTREAM_BURST", 5),
			Namespace: getEnv("UPSTREAM_RATE_NAMESPACE", "ratelimit:upstream"),
		},
		CORS: CORSConfig{
			AllowOrigins: getList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getDuration accepts Go duration strings ("5s", "250ms").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
