// Command aoc manages the puzzle-input cache: storing the session token,
// fetching and printing inputs, and showing the rate limit state.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aoc/internal/config"
	"aoc/internal/input"
	"aoc/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
	policy     string

	// Resolved in PersistentPreRunE
	cfg    *config.Config
	logger *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aoc",
	Short: "Fetch and cache puzzle inputs",
	Long: `aoc fetches puzzle inputs from the event website and caches them locally.

Each input is downloaded at most once. Requests are spaced at least five
minutes apart across every aoc process on this machine, and carry a
User-Agent identifying this tool and its operator.

Per-day programs read inputs through the same cache; this command exists to
log in, prefetch, and inspect state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Read(configPath)
		if err != nil {
			return err
		}
		if policy != "" {
			p, err := config.ParsePolicy(policy)
			if err != nil {
				return err
			}
			cfg.ThrottlePolicy = p
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file (or set AOC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "", "Throttle policy override: block or fail")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 = all)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(inputCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode lets scripts tell failure kinds apart.
func exitCode(err error) int {
	switch {
	case errors.Is(err, input.ErrMissingCredential), errors.Is(err, input.ErrUnreadableConfig):
		return 2
	case errors.Is(err, input.ErrThrottled):
		return 3
	case errors.Is(err, input.ErrAuth):
		return 4
	case errors.Is(err, input.ErrNotFound):
		return 5
	case errors.Is(err, input.ErrNetwork):
		return 6
	case errors.Is(err, input.ErrCacheIO):
		return 7
	default:
		return 1
	}
}
