package throttle

import (
	"errors"
	"fmt"
	"time"
)

// ErrThrottled is matched by every *ThrottledError.
var ErrThrottled = errors.New("request throttled")

// ThrottledError is returned under the fail policy when the minimum interval
// since the last request has not elapsed yet.
type ThrottledError struct {
	Wait        time.Duration
	LastRequest time.Time
}

func (e *ThrottledError) Error() string {
	if e.LastRequest.IsZero() {
		return fmt.Sprintf("%v: another request is in flight, retry in %s", ErrThrottled, e.Wait.Round(time.Second))
	}
	return fmt.Sprintf("%v: last request at %s, retry in %s",
		ErrThrottled, e.LastRequest.Format(time.RFC3339), e.Wait.Round(time.Second))
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// errLocked reports a non-blocking lock attempt that found the lock held.
var errLocked = errors.New("throttle state is locked by another process")
