// Package puzzle identifies a single day's puzzle input.
package puzzle

import (
	"errors"
	"fmt"
	"strconv"
)

// FirstYear is the first year the event ran.
const FirstYear = 2015

// LastDay is the final puzzle day of each event.
const LastDay = 25

// ErrInvalidKey is returned for a year/day pair that cannot name a puzzle.
var ErrInvalidKey = errors.New("invalid puzzle key")

// Key identifies one puzzle input. A given key always maps to the same
// input for a given user, so it partitions both the cache and the throttle.
type Key struct {
	Year int
	Day  int
}

// NewKey builds a Key and validates it.
func NewKey(year, day int) (Key, error) {
	k := Key{Year: year, Day: day}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// ParseKey parses decimal year and day arguments, e.g. from the command line.
func ParseKey(year, day string) (Key, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Key{}, fmt.Errorf("%w: year %q is not a number", ErrInvalidKey, year)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return Key{}, fmt.Errorf("%w: day %q is not a number", ErrInvalidKey, day)
	}
	return NewKey(y, d)
}

// Validate checks that the key falls inside the event calendar.
func (k Key) Validate() error {
	if k.Year < FirstYear {
		return fmt.Errorf("%w: year %d is before %d", ErrInvalidKey, k.Year, FirstYear)
	}
	if k.Day < 1 || k.Day > LastDay {
		return fmt.Errorf("%w: day %d is outside 1..%d", ErrInvalidKey, k.Day, LastDay)
	}
	return nil
}

// String renders the key as "2023/01".
func (k Key) String() string {
	return fmt.Sprintf("%d/%02d", k.Year, k.Day)
}
