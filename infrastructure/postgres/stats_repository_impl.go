package postgres

import (
	"context"

	"gorm.io/gorm"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type StatsRepositoryImpl struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) repositories.StatsRepository {
	return &StatsRepositoryImpl{db: db}
}

// One statement, so every counter reads the same snapshot.
const statsSQL = `
SELECT
	(SELECT COUNT(*) FROM users) AS total_users,
	(SELECT COUNT(*) FROM photos) AS total_images,
	(SELECT COUNT(*) FROM photos WHERE status = 'processed') AS processed_images,
	(SELECT COUNT(*) FROM photos WHERE status <> 'processed') AS pending_images,
	(SELECT COUNT(*) FROM photos WHERE status = 'processing') AS processing_images,
	(SELECT COUNT(*) FROM photo_matches) AS total_matches`

func (r *StatsRepositoryImpl) Snapshot(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := r.db.WithContext(ctx).Raw(statsSQL).Scan(&stats).Error; err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}
