package repositories

import (
	"context"

	"event-gallery/domain/models"
)

type StatsRepository interface {
	// Snapshot computes all dashboard counters from one consistent read.
	Snapshot(ctx context.Context) (*models.DashboardStats, error)
}
