package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print user, image and match counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	container, err := openContainer(nil)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	stats, err := container.AdminService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	if jsonOutput {
		return printJSON(stats)
	}
	fmt.Printf("Users:            %d\n", stats.TotalUsers)
	fmt.Printf("Images:           %d\n", stats.TotalImages)
	fmt.Printf("  processed:      %d\n", stats.ProcessedImages)
	fmt.Printf("  pending:        %d (%d claimed)\n", stats.PendingImages, stats.ProcessingImages)
	fmt.Printf("Matches:          %d\n", stats.TotalMatches)
	return nil
}
