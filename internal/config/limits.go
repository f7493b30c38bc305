package config

import (
	"fmt"
	"time"
)

// MinInterval is the minimum time between two requests to the puzzle
// service. It is policy, not configuration.
const MinInterval = 5 * time.Minute

// ThrottlePolicy selects what a cache miss does while MinInterval has not elapsed.
type ThrottlePolicy string

const (
	// PolicyBlock sleeps until the interval has elapsed, then fetches.
	PolicyBlock ThrottlePolicy = "block"
	// PolicyFail returns a throttled error immediately.
	PolicyFail ThrottlePolicy = "fail"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (ThrottlePolicy, error) {
	switch p := ThrottlePolicy(s); p {
	case PolicyBlock, PolicyFail:
		return p, nil
	default:
		return "", fmt.Errorf("invalid throttle_policy %q (valid: %s, %s)", s, PolicyBlock, PolicyFail)
	}
}
