package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
	"event-gallery/pkg/config"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one matching batch inline",
	Long: `Matches every pending photo against the registered users and records the
results, showing progress as photos finish. Interrupting the command fails
the batch and releases unfinished photos back to pending.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Int("limit", 0, "Maximum photos in the batch (0 uses MATCH_BATCH_LIMIT)")
	processCmd.Flags().Int("concurrency", 0, "Photos processed in parallel (0 uses MATCH_CONCURRENCY)")
	rootCmd.AddCommand(processCmd)
}

// barObserver drives a progress bar from batch callbacks.
type barObserver struct {
	bar *progressbar.ProgressBar
}

func (o *barObserver) BatchStarted(batch *models.MatchBatch) {
	if o.bar != nil {
		o.bar.ChangeMax(batch.TotalPhotos)
	}
}

func (o *barObserver) PhotoDone(_ *models.MatchBatch, _ uuid.UUID, _ services.PhotoOutcome, _ int) {
	if o.bar != nil {
		_ = o.bar.Add(1)
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
	concurrency := mustGetInt(cmd, "concurrency")

	container, err := openContainer(func(cfg *config.Config) {
		if limit > 0 {
			cfg.Matching.BatchLimit = limit
		}
		if concurrency > 0 {
			cfg.Matching.Concurrency = concurrency
		}
	})
	if err != nil {
		return err
	}
	defer container.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	matching := container.MatchingService
	batch, err := matching.CreateBatch(ctx, models.BatchTriggerCLI)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}

	observer := &barObserver{}
	if !jsonOutput {
		observer.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Matching photos"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	result, runErr := matching.RunBatch(ctx, batch.ID, observer)
	if observer.bar != nil {
		_ = observer.bar.Finish()
		fmt.Println()
	}
	if result == nil {
		return fmt.Errorf("batch %s failed: %w", batch.ID, runErr)
	}

	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		fmt.Printf("Batch:     %s (%s)\n", result.ID, result.Status)
		fmt.Printf("Photos:    %d\n", result.TotalPhotos)
		fmt.Printf("Processed: %d\n", result.ProcessedPhotos)
		fmt.Printf("Skipped:   %d\n", result.SkippedPhotos)
		fmt.Printf("Matches:   %d\n", result.MatchesRecorded)
	}
	if runErr != nil {
		return fmt.Errorf("batch %s failed: %w", result.ID, runErr)
	}
	return nil
}
