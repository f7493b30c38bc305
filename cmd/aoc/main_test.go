package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aoc/internal/cache"
	"aoc/internal/config"
	"aoc/internal/history"
	"aoc/internal/input"
	"aoc/internal/logging"
	"aoc/internal/puzzle"
	"aoc/internal/throttle"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the command globals at a temp workspace and returns a
// command whose output is captured.
func setup(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvSession, config.EnvSessionFile, config.EnvDataDir,
		config.EnvPolicy, config.EnvContact, config.EnvBaseURL} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	cfg = config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.SessionFile = filepath.Join(dir, "session")
	// Nothing listens here; any network access fails the test.
	cfg.BaseURL = "http://127.0.0.1:1"
	logger = logging.Nop()
	t.Cleanup(func() {
		cfg = nil
		logger = nil
	})

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{config.ErrMissingCredential, 2},
		{fmt.Errorf("wrapped: %w", config.ErrUnreadableConfig), 2},
		{&throttle.ThrottledError{Wait: time.Minute}, 3},
		{input.ErrAuth, 4},
		{input.ErrNotFound, 5},
		{fmt.Errorf("input 2023/01: %w", input.ErrNetwork), 6},
		{input.ErrCacheIO, 7},
		{errors.New("anything else"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), tt.err.Error())
	}
}

func TestRunLogin_StoresToken(t *testing.T) {
	cmd, out := setup(t)

	require.NoError(t, runLogin(cmd, []string{"session=cafebabe1234"}))

	data, err := os.ReadFile(cfg.SessionFile)
	require.NoError(t, err)
	assert.Equal(t, "cafebabe1234\n", string(data))

	assert.Contains(t, out.String(), "Session token stored")
	assert.Contains(t, out.String(), "[redacted]")
	assert.NotContains(t, out.String(), "cafebabe1234")
}

func TestRunLogin_ShowsMissingSession(t *testing.T) {
	cmd, out := setup(t)

	require.NoError(t, runLogin(cmd, nil))
	assert.Contains(t, out.String(), "not configured")
}

func TestRunInput_ServesCacheWithoutNetwork(t *testing.T) {
	cmd, out := setup(t)
	t.Setenv(config.EnvSession, "tok")

	key := puzzle.Key{Year: 2023, Day: 1}
	require.NoError(t, cache.NewStore(cfg.DataDir, nil).Put(key, "1abc2\npqr3stu8vwx\n"))

	require.NoError(t, runInput(cmd, []string{"2023", "1"}))
	assert.Equal(t, "1abc2\npqr3stu8vwx\n", out.String())
}

func TestRunInput_MissingCredential(t *testing.T) {
	cmd, _ := setup(t)

	err := runInput(cmd, []string{"2023", "1"})
	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Equal(t, 2, exitCode(err))
}

func TestRunInput_InvalidKey(t *testing.T) {
	cmd, _ := setup(t)

	err := runInput(cmd, []string{"2023", "31"})
	assert.ErrorIs(t, err, puzzle.ErrInvalidKey)
}

func TestRunInput_NetworkFailure(t *testing.T) {
	cmd, _ := setup(t)
	t.Setenv(config.EnvSession, "tok")

	err := runInput(cmd, []string{"2023", "1"})
	require.ErrorIs(t, err, input.ErrNetwork)
	assert.Equal(t, 6, exitCode(err))
}

func TestRunStatus(t *testing.T) {
	cmd, out := setup(t)

	require.NoError(t, runStatus(cmd, nil))
	assert.Contains(t, out.String(), "Last request: never")
	assert.Contains(t, out.String(), "Next request allowed: now")
	assert.Contains(t, out.String(), "Session: ❌")

	out.Reset()
	data, err := throttle.State{LastRequest: time.Now().Add(-time.Minute)}.MarshalText()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0755))
	require.NoError(t, os.WriteFile(cfg.ThrottlePath(), data, 0644))
	t.Setenv(config.EnvSession, "tok")

	require.NoError(t, runStatus(cmd, nil))
	assert.Contains(t, out.String(), "Next request allowed in")
	assert.Contains(t, out.String(), "Session: ✓ [redacted]")
	assert.NotContains(t, out.String(), "tok\n")
}

func TestRunStatus_CorruptThrottleState(t *testing.T) {
	cmd, out := setup(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0755))
	require.NoError(t, os.WriteFile(cfg.ThrottlePath(), []byte("garbage"), 0644))

	require.NoError(t, runStatus(cmd, nil))
	assert.Contains(t, out.String(), "Next request allowed in: 5m0s")
}

func TestRunHistory(t *testing.T) {
	cmd, out := setup(t)
	historyLimit = 20

	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "No requests recorded.")

	store, err := history.Open(cfg.HistoryPath())
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), history.Entry{
		Key:      puzzle.Key{Year: 2023, Day: 4},
		IssuedAt: time.Now(),
		Status:   200,
		Bytes:    21,
	}))
	require.NoError(t, store.Close())

	out.Reset()
	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "2023/04")
	assert.Contains(t, out.String(), "200")
}

func TestRootCmd_RejectsBadPolicy(t *testing.T) {
	setup(t)
	t.Cleanup(func() {
		policy = ""
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.yaml"), "--policy", "sometimes", "status"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sometimes")
}
