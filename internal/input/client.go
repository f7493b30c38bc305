package input

import (
	"context"
	"fmt"
	"os"

	"aoc/internal/cache"
	"aoc/internal/config"
	"aoc/internal/history"
	"aoc/internal/logging"
	"aoc/internal/puzzle"
	"aoc/internal/throttle"

	"go.uber.org/zap"
)

// Client is a Fetcher wired from the user's configuration.
type Client struct {
	*Fetcher

	Config  *config.Config
	Logger  *logging.Logger
	History *history.Store
}

// Open loads configuration and wires a Client. The credential is resolved
// first, so a missing one fails before any cache or network I/O.
func Open() (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableConfig, err)
	}
	return NewClient(cfg, logger)
}

// NewClient wires a Client from an already loaded config.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	store := cache.NewStore(cfg.DataDir, logger.Get(logging.CategoryCache))
	gate := throttle.NewGate(cfg.ThrottlePath(), cfg.ThrottlePolicy,
		throttle.WithLogger(logger.Get(logging.CategoryThrottle)))

	opts := []Option{WithLogger(logger.Get(logging.CategoryFetch))}

	// The ledger is an audit aid; fetching works without it.
	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Get(logging.CategoryHistory).Warn("request history unavailable", zap.Error(err))
	} else {
		opts = append(opts, WithRecorder(hist))
	}

	f, err := New(cfg, store, gate, opts...)
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, err
	}

	return &Client{Fetcher: f, Config: cfg, Logger: logger, History: hist}, nil
}

// Close releases the history database, idle connections and flushes logs.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	var err error
	if c.History != nil {
		err = c.History.Close()
	}
	_ = c.Logger.Sync()
	return err
}

// Get is the one-call entry point for per-day programs.
func Get(ctx context.Context, year, day int) (string, error) {
	key, err := puzzle.NewKey(year, day)
	if err != nil {
		return "", err
	}
	c, err := Open()
	if err != nil {
		return "", err
	}
	defer c.Close()
	return c.GetInput(ctx, key)
}

// FileSource serves a local file for every key, e.g. a worked example.
type FileSource struct {
	Path string
}

func (s FileSource) GetInput(_ context.Context, _ puzzle.Key) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: load input from %s: %v", ErrCacheIO, s.Path, err)
	}
	return string(data), nil
}
