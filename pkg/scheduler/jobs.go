package scheduler

import (
	"context"
	"time"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
	"event-gallery/pkg/config"
	"event-gallery/pkg/logger"
)

const (
	JobReleaseStale = "release-stale-claims"
	JobAutoProcess  = "auto-process"

	reaperInterval = 5 * time.Minute
	jobTimeout     = time.Minute
)

// RegisterMatchingJobs schedules the stale-claim reaper and, when configured,
// periodic matching batches.
func RegisterMatchingJobs(s JobScheduler, matching services.MatchingService, cfg config.MatchingConfig) error {
	if cfg.StaleAfter > 0 {
		err := s.AddInterval(JobReleaseStale, reaperInterval, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if _, err := matching.ReleaseStale(ctx, cfg.StaleAfter); err != nil {
				logger.SchedulerError(JobReleaseStale, "Failed to release stale claims", err, nil)
			}
		})
		if err != nil {
			return err
		}
	}

	if cfg.AutoCron == "" {
		return nil
	}
	if err := ValidateCronExpression(cfg.AutoCron); err != nil {
		return err
	}
	return s.AddCron(JobAutoProcess, cfg.AutoCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		batch, err := matching.Trigger(ctx, models.BatchTriggerScheduler)
		if err != nil {
			logger.SchedulerError(JobAutoProcess, "Failed to trigger matching", err, nil)
			return
		}
		logger.Scheduler(JobAutoProcess, "Matching batch triggered", map[string]interface{}{"batch_id": batch.ID.String()})
	})
}
