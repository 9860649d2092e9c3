package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

// PhotoOutcome is the result of one photo inside a batch.
type PhotoOutcome string

const (
	OutcomeProcessed PhotoOutcome = "processed"
	OutcomeSkipped   PhotoOutcome = "skipped"
	OutcomeClaimed   PhotoOutcome = "claimed_elsewhere"
)

// BatchObserver receives progress while a batch runs. Calls may come from
// several goroutines.
type BatchObserver interface {
	BatchStarted(batch *models.MatchBatch)
	PhotoDone(batch *models.MatchBatch, photoID uuid.UUID, outcome PhotoOutcome, matches int)
}

// BatchQueue runs matching work in the background.
type BatchQueue interface {
	EnqueueBatch(batchID uuid.UUID) bool
	EnqueueBackfill(userID uuid.UUID) bool
}

type MatchingService interface {
	// Trigger records a queued batch and schedules it, or returns the batch
	// already waiting in the queue.
	Trigger(ctx context.Context, trigger models.BatchTrigger) (*models.MatchBatch, error)
	// CreateBatch records a queued batch without scheduling it.
	CreateBatch(ctx context.Context, trigger models.BatchTrigger) (*models.MatchBatch, error)
	// RunBatch processes the pending photos captured at its start.
	RunBatch(ctx context.Context, batchID uuid.UUID, observer BatchObserver) (*models.MatchBatch, error)

	// MatchUser matches one user against every processed photo.
	MatchUser(ctx context.Context, userID uuid.UUID) (int, error)
	// ScheduleBackfill queues MatchUser, or runs it inline without a queue.
	ScheduleBackfill(ctx context.Context, userID uuid.UUID)

	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)

	GetBatch(ctx context.Context, batchID uuid.UUID) (*models.MatchBatch, error)
	ListBatches(ctx context.Context, limit int) ([]models.MatchBatch, error)
	// ResumeQueued schedules the oldest batch still queued, if any.
	ResumeQueued(ctx context.Context) error
	// RecoverInterrupted fails batches left running by a previous process.
	RecoverInterrupted(ctx context.Context) (int64, error)

	SetQueue(queue BatchQueue)
}
