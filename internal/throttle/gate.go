// Package throttle enforces the minimum interval between requests to the
// puzzle service across every process on the machine.
//
// The last-request timestamp lives in a small state file. A caller takes an
// exclusive advisory lock on that file, reads the timestamp, waits (or
// refuses) until the interval has elapsed, stamps the new timestamp when it
// issues its request, and only then releases the lock. Two requests can
// therefore never be issued less than the interval apart, whichever process
// they come from.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"aoc/internal/config"

	"go.uber.org/zap"
)

// Gate guards the throttle state file.
type Gate struct {
	path     string
	interval time.Duration
	policy   config.ThrottlePolicy
	clock    Clock
	logger   *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithInterval overrides config.MinInterval. Only tests should need it.
func WithInterval(d time.Duration) Option {
	return func(g *Gate) { g.interval = d }
}

// NewGate creates a Gate for the state file at path.
func NewGate(path string, policy config.ThrottlePolicy, opts ...Option) *Gate {
	g := &Gate{
		path:     path,
		interval: config.MinInterval,
		policy:   policy,
		clock:    SystemClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path returns the state file location.
func (g *Gate) Path() string {
	return g.path
}

// Interval returns the enforced minimum interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Acquire locks the state file and returns once a request may be issued.
// Under the block policy it sleeps for the remaining interval; under the
// fail policy it returns a *ThrottledError instead. The caller must Stamp
// the permit when it issues its request and Release it afterwards.
func (g *Gate) Acquire(ctx context.Context) (*Permit, error) {
	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		return nil, fmt.Errorf("creating throttle directory: %w", err)
	}
	f, err := os.OpenFile(g.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening throttle state: %w", err)
	}

	block := g.policy != config.PolicyFail
	if err := lockFile(f, block); err != nil {
		_ = f.Close()
		if errors.Is(err, errLocked) {
			// Someone is between their check and their request; the
			// earliest we could go is a full interval from now.
			return nil, &ThrottledError{Wait: g.interval}
		}
		return nil, fmt.Errorf("locking throttle state: %w", err)
	}

	p := &Permit{gate: g, file: f}

	state, err := g.readLocked(f)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.previous = state

	wait := state.Wait(g.clock.Now(), g.interval)
	if wait == 0 {
		return p, nil
	}

	if g.policy == config.PolicyFail {
		p.Release()
		g.logger.Info("request refused by throttle",
			zap.Time("last_request", state.LastRequest),
			zap.Duration("retry_in", wait))
		return nil, &ThrottledError{Wait: wait, LastRequest: state.LastRequest}
	}

	g.logger.Info("waiting for throttle interval",
		zap.Time("last_request", state.LastRequest),
		zap.Duration("wait", wait))
	if err := g.clock.Sleep(ctx, wait); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// readLocked reads state from the locked file.
func (g *Gate) readLocked(f *os.File) (State, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return State{}, fmt.Errorf("reading throttle state: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return State{}, fmt.Errorf("reading throttle state: %w", err)
	}
	return g.decode(data), nil
}

// decode parses state file contents. Unparsable contents are treated as a
// request issued just now, so the next caller waits a full interval instead
// of skipping the wait.
func (g *Gate) decode(data []byte) State {
	state, err := ParseState(data)
	if err != nil {
		g.logger.Warn("corrupt throttle state, assuming a request was just issued",
			zap.String("path", g.path), zap.Error(err))
		return State{LastRequest: g.clock.Now()}
	}
	return state
}

// Peek reads the current state without taking the lock. A corrupt file
// reads the same way Acquire sees it.
func (g *Gate) Peek() (State, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("reading throttle state: %w", err)
	}
	return g.decode(data), nil
}

// Remaining reports how long a request issued now would have to wait.
func (g *Gate) Remaining() (time.Duration, State, error) {
	state, err := g.Peek()
	if err != nil {
		return 0, State{}, err
	}
	return state.Wait(g.clock.Now(), g.interval), state, nil
}

// Permit is held while a request may be issued.
type Permit struct {
	gate     *Gate
	file     *os.File
	previous State
	stamped  time.Time
}

// Previous is the state observed when the permit was granted.
func (p *Permit) Previous() State {
	return p.previous
}

// Stamp records now as the last request time. Call it when the request is
// issued, whether or not it later succeeds.
func (p *Permit) Stamp() (time.Time, error) {
	if p.file == nil {
		return time.Time{}, errors.New("throttle permit already released")
	}
	now := p.gate.clock.Now()
	data, err := State{LastRequest: now}.MarshalText()
	if err != nil {
		return time.Time{}, err
	}

	// The lock lives on this file, so it is rewritten in place rather than
	// replaced by rename. Writing before truncating means the file is never
	// empty, which would read as "no prior request".
	if _, err := p.file.WriteAt(data, 0); err != nil {
		return time.Time{}, fmt.Errorf("writing throttle state: %w", err)
	}
	if err := p.file.Truncate(int64(len(data))); err != nil {
		return time.Time{}, fmt.Errorf("writing throttle state: %w", err)
	}
	if err := p.file.Sync(); err != nil {
		return time.Time{}, fmt.Errorf("syncing throttle state: %w", err)
	}

	p.stamped = now
	p.gate.logger.Debug("throttle stamped", zap.Time("at", now))
	return now, nil
}

// Stamped returns the recorded request time, or zero if Stamp was not called.
func (p *Permit) Stamped() time.Time {
	return p.stamped
}

// Release unlocks the state file. It is safe to call more than once.
func (p *Permit) Release() {
	if p.file == nil {
		return
	}
	if err := unlockFile(p.file); err != nil {
		p.gate.logger.Warn("failed to unlock throttle state", zap.Error(err))
	}
	_ = p.file.Close()
	p.file = nil
}
