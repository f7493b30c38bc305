package throttle

import (
	"fmt"
	"strings"
	"time"
)

// State is the persisted rate-limit bookkeeping: when the last request to
// the puzzle service was issued. The zero value means no request yet.
type State struct {
	LastRequest time.Time
}

// ParseState decodes the state file contents. Empty input is the zero State.
func ParseState(data []byte) (State, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return State{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return State{}, fmt.Errorf("parse throttle state: %w", err)
	}
	return State{LastRequest: t}, nil
}

// MarshalText encodes the state as a single RFC 3339 UTC line.
func (s State) MarshalText() ([]byte, error) {
	if s.LastRequest.IsZero() {
		return nil, nil
	}
	return []byte(s.LastRequest.UTC().Format(time.RFC3339Nano) + "\n"), nil
}

// Wait returns how long a caller must wait at now before a request is
// allowed. The result never exceeds interval, even if LastRequest lies in
// the future.
func (s State) Wait(now time.Time, interval time.Duration) time.Duration {
	if s.LastRequest.IsZero() {
		return 0
	}
	wait := s.LastRequest.Add(interval).Sub(now)
	switch {
	case wait <= 0:
		return 0
	case wait > interval:
		return interval
	default:
		return wait
	}
}
