package repositories

import (
	"context"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type BatchRepository interface {
	Create(ctx context.Context, batch *models.MatchBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MatchBatch, error)
	// GetQueued returns the oldest queued batch or ErrNotFound.
	GetQueued(ctx context.Context) (*models.MatchBatch, error)
	List(ctx context.Context, limit int) ([]models.MatchBatch, error)
	MarkRunning(ctx context.Context, id uuid.UUID, total int) error
	UpdateProgress(ctx context.Context, id uuid.UUID, processed, skipped, matches int) error
	Finish(ctx context.Context, id uuid.UUID, status models.BatchStatus, lastError string) error
	// FailInterrupted marks batches left running by a previous process as failed.
	FailInterrupted(ctx context.Context) (int64, error)
}
