// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level          string // debug, info, warn, error
	Format         string // json, pretty
	FileEnabled    bool
	FilePath       string // logs directory path
	RotationSize   int    // MB
	RetentionDays  int
	ServiceName    string
	ServiceVersion string
}

// Init initializes the global logger
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writers, err := buildWriters(cfg, os.Stderr)
	if err != nil {
		return err
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Logger()

	log.Info().
		Str("level", level.String()).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("logger initialized")

	return nil
}

func buildWriters(cfg Config, console io.Writer) ([]io.Writer, error) {
	var writers []io.Writer

	if cfg.Format == "pretty" {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
	} else {
		writers = append(writers, console)
	}

	if !cfg.FileEnabled {
		return writers, nil
	}

	if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	writers = append(writers, &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, "app.log"),
		MaxSize:    cfg.RotationSize,
		MaxAge:     cfg.RetentionDays,
		MaxBackups: 10,
		Compress:   true,
	})

	// ERROR以上のみ
	writers = append(writers, errorOnly{w: &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, "error.log"),
		MaxSize:    cfg.RotationSize,
		MaxAge:     cfg.RetentionDays,
		MaxBackups: 10,
		Compress:   true,
	}})

	return writers, nil
}

// errorOnly forwards only events at ERROR level and above.
type errorOnly struct {
	w io.Writer
}

func (e errorOnly) Write(p []byte) (int, error) {
	return len(p), nil
}

func (e errorOnly) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}
