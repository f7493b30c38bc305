package input

import (
	"fmt"
	"strconv"
	"strings"
)

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseLines parses every non-empty line of text with parse.
func ParseLines[T any](text string, parse func(string) (T, error)) ([]T, error) {
	lines := Lines(text)
	out := make([]T, 0, len(lines))
	for i, line := range lines {
		v, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("parse error on line %d (%q): %w", i+1, line, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Ints parses one integer per line.
func Ints(text string) ([]int, error) {
	return ParseLines(text, strconv.Atoi)
}
