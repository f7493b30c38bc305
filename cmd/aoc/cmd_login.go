package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// loginCmd stores or shows the session token
var loginCmd = &cobra.Command{
	Use:   "login [session-token]",
	Short: "Store the session token or show session information",
	Long: `Store the session cookie value used to download inputs.

Copy the "session" cookie from a logged-in browser and pass it here. It is
written to the session file with owner-only permissions. Without an argument
the current session state is shown. The token itself is never printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		if err := cfg.SaveCredential(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Session token stored in %s\n", cfg.SessionFile)
	}

	if err := cfg.LoadCredential(); err != nil {
		fmt.Fprintf(out, "Session: not configured\n  %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "Session: %s (%d characters)\n", cfg.Credential, len(cfg.Credential.Value()))
	fmt.Fprintf(out, "  Session file: %s\n", cfg.SessionFile)
	fmt.Fprintf(out, "  User-Agent: %s\n", cfg.UserAgent())
	return nil
}
