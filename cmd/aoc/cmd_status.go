package main

import (
	"fmt"
	"time"

	"aoc/internal/input"
	"aoc/internal/logging"
	"aoc/internal/throttle"

	"github.com/spf13/cobra"
)

// statusCmd shows configuration and rate limit state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, session and rate limit state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Config file: %s\n", cfg.Path())
	fmt.Fprintf(out, "Data dir: %s\n", cfg.DataDir)
	fmt.Fprintf(out, "Base URL: %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "User-Agent: %s\n", cfg.UserAgent())

	if err := cfg.LoadCredential(); err != nil {
		fmt.Fprintf(out, "Session: ❌ %v\n", err)
	} else {
		fmt.Fprintf(out, "Session: ✓ %s\n", cfg.Credential)
	}

	gate := throttle.NewGate(cfg.ThrottlePath(), cfg.ThrottlePolicy,
		throttle.WithLogger(logger.Get(logging.CategoryThrottle)))
	remaining, state, err := gate.Remaining()
	if err != nil {
		return fmt.Errorf("%w: %v", input.ErrCacheIO, err)
	}

	fmt.Fprintf(out, "Throttle: %s policy, one request per %s\n", cfg.ThrottlePolicy, gate.Interval())
	if state.LastRequest.IsZero() {
		fmt.Fprintln(out, "  Last request: never")
	} else {
		fmt.Fprintf(out, "  Last request: %s\n", state.LastRequest.Local().Format(time.RFC1123))
	}
	if remaining > 0 {
		fmt.Fprintf(out, "  Next request allowed in: %s\n", remaining.Round(time.Second))
	} else {
		fmt.Fprintln(out, "  Next request allowed: now")
	}
	return nil
}
