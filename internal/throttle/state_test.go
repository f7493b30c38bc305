package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	at := time.Date(2023, 12, 1, 5, 0, 0, 123456789, time.UTC)

	data, err := State{LastRequest: at}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01T05:00:00.123456789Z\n", string(data))

	got, err := ParseState(data)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastRequest))
}

func TestParseState_Empty(t *testing.T) {
	s, err := ParseState([]byte("  \n"))
	require.NoError(t, err)
	assert.True(t, s.LastRequest.IsZero())
}

func TestParseState_Garbage(t *testing.T) {
	_, err := ParseState([]byte("yesterday-ish"))
	assert.Error(t, err)
}

func TestState_Wait(t *testing.T) {
	now := time.Date(2023, 12, 1, 5, 0, 0, 0, time.UTC)
	interval := 5 * time.Minute

	tests := []struct {
		name string
		last time.Time
		want time.Duration
	}{
		{"never", time.Time{}, 0},
		{"six minutes ago", now.Add(-6 * time.Minute), 0},
		{"exactly the interval", now.Add(-interval), 0},
		{"thirty seconds ago", now.Add(-30 * time.Second), 4*time.Minute + 30*time.Second},
		{"in the future is capped", now.Add(time.Hour), interval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, State{LastRequest: tt.last}.Wait(now, interval))
		})
	}
}
