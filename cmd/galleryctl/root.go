package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"event-gallery/pkg/config"
	"event-gallery/pkg/di"
	"event-gallery/pkg/logger"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "galleryctl",
	Short: "Maintenance commands for the event gallery backend",
	Long: `galleryctl works on the same database and storage as the API server.
It can migrate the schema, run a matching batch inline, print statistics,
release stale photo claims and create admin accounts.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// openContainer loads the configuration, lets mutate adjust it, and wires
// services without the background worker or scheduler. Logs go to files only
// so they do not interleave with command output.
func openContainer(mutate func(*config.Config)) (*di.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := logger.Init(cfg.Log.Dir, false, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	container := di.NewContainer().WithConfig(cfg)
	if err := container.InitializeCore(); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return container, nil
}
