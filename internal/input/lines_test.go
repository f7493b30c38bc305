package input

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, Lines("a\n  b c \n\n\r\nd\n"))
	assert.Empty(t, Lines(""))
}

func TestInts(t *testing.T) {
	got, err := Ints(sonarSweep + "\n")
	require.NoError(t, err)
	assert.Equal(t, []int{199, 200, 208, 210, 200, 207, 240, 269, 260, 263}, got)
}

func TestParseLines_ReportsLine(t *testing.T) {
	_, err := ParseLines("1\n2\nthree\n", strconv.Atoi)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `"three"`)
}

func TestParseLines_CustomType(t *testing.T) {
	type move struct {
		dir  string
		dist int
	}
	parse := func(s string) (move, error) {
		n, err := strconv.Atoi(s[1:])
		return move{dir: s[:1], dist: n}, err
	}

	got, err := ParseLines("R8\nU5\n", parse)
	require.NoError(t, err)
	assert.Equal(t, []move{{"R", 8}, {"U", 5}}, got)
}
