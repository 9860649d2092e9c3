package memory

import (
	"context"

	"event-gallery/domain/models"
)

type statsRepo struct{ s *Store }

func (r *statsRepo) Snapshot(_ context.Context) (*models.DashboardStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &models.DashboardStats{
		TotalUsers:   int64(len(r.s.users)),
		TotalImages:  int64(len(r.s.photos)),
		TotalMatches: int64(len(r.s.matches)),
	}
	for _, p := range r.s.photos {
		switch p.Status {
		case models.PhotoStatusProcessed:
			stats.ProcessedImages++
		case models.PhotoStatusProcessing:
			stats.ProcessingImages++
			stats.PendingImages++
		default:
			stats.PendingImages++
		}
	}
	return stats, nil
}
