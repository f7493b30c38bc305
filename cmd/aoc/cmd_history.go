package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"aoc/internal/history"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists requests issued to the puzzle service
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List requests issued to the puzzle website",
	Long: `Lists every request this machine has issued, newest first, with the
response status. Useful to confirm the rate limit has been respected.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No requests recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ISSUED\tPUZZLE\tSTATUS\tBYTES\tERROR")
	for _, e := range entries {
		status := "-"
		if e.Status != 0 {
			status = fmt.Sprintf("%d", e.Status)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			e.IssuedAt.Local().Format(time.DateTime), e.Key, status, e.Bytes, e.Error)
	}
	return w.Flush()
}
