package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type BatchRepositoryImpl struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) repositories.BatchRepository {
	return &BatchRepositoryImpl{db: db}
}

func (r *BatchRepositoryImpl) Create(ctx context.Context, batch *models.MatchBatch) error {
	return translate(r.db.WithContext(ctx).Create(batch).Error)
}

func (r *BatchRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.MatchBatch, error) {
	var batch models.MatchBatch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, translate(err)
	}
	return &batch, nil
}

func (r *BatchRepositoryImpl) GetQueued(ctx context.Context) (*models.MatchBatch, error) {
	var batch models.MatchBatch
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BatchStatusQueued).
		Order("queued_at ASC").
		First(&batch).Error
	if err != nil {
		return nil, translate(err)
	}
	return &batch, nil
}

func (r *BatchRepositoryImpl) List(ctx context.Context, limit int) ([]models.MatchBatch, error) {
	var batches []models.MatchBatch
	q := r.db.WithContext(ctx).Order("queued_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&batches).Error
	return batches, translate(err)
}

func (r *BatchRepositoryImpl) MarkRunning(ctx context.Context, id uuid.UUID, total int) error {
	res := r.db.WithContext(ctx).Model(&models.MatchBatch{}).
		Where("id = ? AND status = ?", id, models.BatchStatusQueued).
		Updates(map[string]interface{}{
			"status":       models.BatchStatusRunning,
			"total_photos": total,
			"started_at":   time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *BatchRepositoryImpl) UpdateProgress(ctx context.Context, id uuid.UUID, processed, skipped, matches int) error {
	return translate(r.db.WithContext(ctx).Model(&models.MatchBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_photos": processed,
			"skipped_photos":   skipped,
			"matches_recorded": matches,
		}).Error)
}

func (r *BatchRepositoryImpl) Finish(ctx context.Context, id uuid.UUID, status models.BatchStatus, lastError string) error {
	return translate(r.db.WithContext(ctx).Model(&models.MatchBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"last_error":   lastError,
			"completed_at": time.Now(),
		}).Error)
}

func (r *BatchRepositoryImpl) FailInterrupted(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.MatchBatch{}).
		Where("status = ?", models.BatchStatusRunning).
		Updates(map[string]interface{}{
			"status":       models.BatchStatusFailed,
			"last_error":   "interrupted by restart",
			"completed_at": time.Now(),
		})
	return res.RowsAffected, translate(res.Error)
}
