// Package input is the single authority through which puzzle inputs are
// obtained. A cached input is returned without touching the network; a
// missing one costs exactly one authenticated, rate-limited request.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"aoc/internal/cache"
	"aoc/internal/config"
	"aoc/internal/history"
	"aoc/internal/puzzle"
	"aoc/internal/throttle"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

// maxInputBytes bounds a response body; real inputs are a few dozen KiB.
const maxInputBytes = 16 << 20

// Source is everything a per-day program needs.
type Source interface {
	GetInput(ctx context.Context, key puzzle.Key) (string, error)
}

// Recorder receives one entry per issued request.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Fetcher implements Source over the on-disk cache, the throttle gate and
// the puzzle service.
type Fetcher struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     *cache.Store
	gate      *throttle.Gate
	recorder  Recorder
	logger    *zap.Logger

	mu      sync.Mutex
	group   singleflight.Group
	flights map[string]*flight
}

// flight is the context shared by every caller waiting on one key. It is
// canceled only once all of them have given up.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client. Its cookie jar is replaced.
// A nil client keeps the default.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c == nil {
			return
		}
		clone := *c
		f.client = &clone
	}
}

// WithRecorder logs each issued request to r.
func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) { f.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New wires a Fetcher. cfg must carry a resolved credential.
func New(cfg *config.Config, store *cache.Store, gate *throttle.Gate, opts ...Option) (*Fetcher, error) {
	if cfg.Credential.IsZero() {
		return nil, fmt.Errorf("%w: run `aoc login <token>`", ErrMissingCredential)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid base_url %q", ErrUnreadableConfig, cfg.BaseURL)
	}

	f := &Fetcher{
		baseURL:   base.String(),
		userAgent: cfg.UserAgent(),
		client:    &http.Client{Timeout: cfg.GetTimeout()},
		cache:     store,
		gate:      gate,
		logger:    zap.NewNop(),
		flights:   make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(f)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	jar.SetCookies(base, []*http.Cookie{{
		Name:     "session",
		Value:    cfg.Credential.Value(),
		Path:     "/",
		HttpOnly: true,
		Secure:   base.Scheme == "https",
	}})
	f.client.Jar = jar

	return f, nil
}

// InputURL is the service location of key's input.
func (f *Fetcher) InputURL(key puzzle.Key) string {
	return fmt.Sprintf("%s/%d/day/%d/input", f.baseURL, key.Year, key.Day)
}

// UserAgent is sent with every request.
func (f *Fetcher) UserAgent() string {
	return f.userAgent
}

// GetInput returns the raw input text for key.
func (f *Fetcher) GetInput(ctx context.Context, key puzzle.Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	text, ok, err := f.cache.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheIO, err)
	}
	if ok {
		return text, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := key.String()
	fl, ch := f.join(ctx, name, key)
	select {
	case res := <-ch:
		f.leave(name, fl)
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		f.leave(name, fl)
		return "", ctx.Err()
	}
}

// join registers the caller on the in-flight fetch for key, starting one if
// needed. The fetch runs detached from any single caller's context.
func (f *Fetcher) join(ctx context.Context, name string, key puzzle.Key) (*flight, <-chan singleflight.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl, ok := f.flights[name]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: fctx, cancel: cancel}
		f.flights[name] = fl
	}
	fl.waiters++

	ch := f.group.DoChan(name, func() (any, error) {
		return f.fetch(fl.ctx, key)
	})
	return fl, ch
}

// leave drops the caller from fl. The last one out cancels the shared
// context and forgets the call so later callers start afresh.
func (f *Fetcher) leave(name string, fl *flight) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.flights[name] == fl {
		delete(f.flights, name)
		f.group.Forget(name)
	}
}

func (f *Fetcher) fetch(ctx context.Context, key puzzle.Key) (string, error) {
	permit, err := f.gate.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrThrottled) || ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrCacheIO, err)
	}
	defer permit.Release()

	// Another process may have fetched it while we waited for the lock.
	text, ok, err := f.cache.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheIO, err)
	}
	if ok {
		f.logger.Debug("input appeared while waiting", zap.Stringer("key", key))
		return text, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.InputURL(key), nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	// A request that cannot be recorded is not sent.
	issuedAt, err := permit.Stamp()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheIO, err)
	}

	f.logger.Info("fetching input", zap.Stringer("key", key), zap.String("url", req.URL.String()))
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		f.record(ctx, key, issuedAt, 0, 0, err)
		return "", fmt.Errorf("%w: GET %s: %v", ErrNetwork, key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInputBytes+1))
	if err == nil && len(body) > maxInputBytes {
		err = fmt.Errorf("response exceeds %d bytes", maxInputBytes)
	}
	if err == nil {
		err = classify(key, resp.StatusCode, len(body))
	}
	if err != nil {
		f.record(ctx, key, issuedAt, resp.StatusCode, 0, err)
		f.logger.Warn("fetch failed",
			zap.Stringer("key", key),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		if errors.Is(err, ErrAuth) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNetwork) {
			return "", err
		}
		return "", fmt.Errorf("%w: read body for %s: %v", ErrNetwork, key, err)
	}

	f.record(ctx, key, issuedAt, resp.StatusCode, len(body), nil)
	f.logger.Info("fetched input",
		zap.Stringer("key", key),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	text = string(body)
	if err := f.cache.Put(key, text); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheIO, err)
	}
	return text, nil
}

// classify maps a response to the error taxonomy.
func classify(key puzzle.Key, status, size int) error {
	switch {
	case status == http.StatusOK && size > 0:
		return nil
	case status == http.StatusOK:
		return fmt.Errorf("%w: empty response for %s", ErrNetwork, key)
	case status == http.StatusBadRequest, status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d): refresh it with `aoc login <token>`", ErrAuth, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s has not unlocked yet", ErrNotFound, key)
	default:
		return fmt.Errorf("%w: unexpected HTTP %d for %s", ErrNetwork, status, key)
	}
}

func (f *Fetcher) record(ctx context.Context, key puzzle.Key, issuedAt time.Time, status, size int, failure error) {
	if f.recorder == nil {
		return
	}
	e := history.Entry{Key: key, IssuedAt: issuedAt, Status: status, Bytes: size}
	if failure != nil {
		e.Error = failure.Error()
	}
	// The request already happened; a cancelled caller must not lose the record.
	if err := f.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		f.logger.Warn("failed to record request", zap.Stringer("key", key), zap.Error(err))
	}
}
