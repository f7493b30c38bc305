// Package logging builds the zap loggers used across the fetcher.
// Each subsystem logs under its own named category, and categories can be
// switched off individually in config.yaml.
package logging

import (
	"fmt"
	"sync"

	"aoc/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI startup, config resolution
	CategoryCache    Category = "cache"    // Input cache reads and writes
	CategoryThrottle Category = "throttle" // Rate limit bookkeeping and waits
	CategoryFetch    Category = "fetch"    // Outbound requests to the puzzle service
	CategoryHistory  Category = "history"  // Request ledger
)

// Logger hands out per-category zap loggers.
type Logger struct {
	base *zap.Logger
	cfg  config.LoggingConfig

	mu    sync.RWMutex
	named map[Category]*zap.Logger
}

// New builds a Logger from config. verbose forces debug level.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	zc := zap.NewProductionConfig()

	switch cfg.Format {
	case "", "console":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	case "json":
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: console, json)", cfg.Format)
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	base, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return Wrap(base, cfg), nil
}

// Wrap adapts an existing zap logger, e.g. zap.NewNop() or an observer in tests.
func Wrap(base *zap.Logger, cfg config.LoggingConfig) *Logger {
	return &Logger{
		base:  base,
		cfg:   cfg,
		named: make(map[Category]*zap.Logger),
	}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return Wrap(zap.NewNop(), config.LoggingConfig{})
}

// Get returns (or creates) the logger for a category. Disabled categories
// get a no-op logger.
func (l *Logger) Get(category Category) *zap.Logger {
	if !l.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}

	l.mu.RLock()
	if named, ok := l.named[category]; ok {
		l.mu.RUnlock()
		return named
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if named, ok := l.named[category]; ok {
		return named
	}
	named := l.base.Named(string(category))
	l.named[category] = named
	return named
}

// Base returns the uncategorized logger.
func (l *Logger) Base() *zap.Logger {
	return l.base
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
