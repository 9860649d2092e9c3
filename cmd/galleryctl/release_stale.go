package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var releaseStaleCmd = &cobra.Command{
	Use:   "release-stale",
	Short: "Return photos claimed for too long to pending",
	Long: `Photos left in processing by a crashed batch are released so the next
batch picks them up again. Each release counts as a failed attempt.`,
	Args: cobra.NoArgs,
	RunE: runReleaseStale,
}

func init() {
	releaseStaleCmd.Flags().Duration("older-than", 10*time.Minute, "Release claims older than this")
	rootCmd.AddCommand(releaseStaleCmd)
}

func runReleaseStale(cmd *cobra.Command, args []string) error {
	olderThan := mustGetDuration(cmd, "older-than")
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	container, err := openContainer(nil)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	n, err := container.MatchingService.ReleaseStale(context.Background(), olderThan)
	if err != nil {
		return fmt.Errorf("failed to release claims: %w", err)
	}

	if jsonOutput {
		return printJSON(map[string]int64{"released": n})
	}
	fmt.Printf("Released %d photo(s)\n", n)
	return nil
}
