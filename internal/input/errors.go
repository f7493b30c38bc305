package input

import (
	"errors"

	"aoc/internal/config"
	"aoc/internal/puzzle"
	"aoc/internal/throttle"
)

var (
	// ErrAuth means the service rejected the session credential.
	ErrAuth = errors.New("session credential rejected")

	// ErrNotFound means the puzzle does not exist yet, e.g. before unlock.
	ErrNotFound = errors.New("puzzle input not available")

	// ErrNetwork covers transport failures and unexpected responses.
	ErrNetwork = errors.New("network error")

	// ErrCacheIO covers local filesystem failures.
	ErrCacheIO = errors.New("local cache error")
)

// Re-exported so callers only need this package to classify failures.
var (
	ErrMissingCredential = config.ErrMissingCredential
	ErrUnreadableConfig  = config.ErrUnreadableConfig
	ErrThrottled         = throttle.ErrThrottled
	ErrInvalidKey        = puzzle.ErrInvalidKey
)
