package main

import (
	"fmt"

	"aoc/internal/input"
	"aoc/internal/puzzle"

	"github.com/spf13/cobra"
)

// inputCmd prints a puzzle input, fetching it on a cache miss
var inputCmd = &cobra.Command{
	Use:   "input [year] [day]",
	Short: "Print a puzzle input, downloading it if it is not cached",
	Long: `Prints the raw input for one puzzle.

A cached input is printed without contacting the website. Otherwise exactly
one request is made, after waiting for the rate limit (--policy block) or
failing immediately (--policy fail).

Example:
  aoc input 2023 1 > input.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runInput,
}

func runInput(cmd *cobra.Command, args []string) error {
	key, err := puzzle.ParseKey(args[0], args[1])
	if err != nil {
		return err
	}
	if err := cfg.LoadCredential(); err != nil {
		return err
	}

	client, err := input.NewClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	text, err := client.GetInput(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("input %s: %w", key, err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}
