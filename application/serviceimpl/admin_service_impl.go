package serviceimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/pkg/facematch"
)

const maxBatchListing = 100

type AdminServiceImpl struct {
	userRepo     repositories.UserRepository
	photoRepo    repositories.PhotoRepository
	statsRepo    repositories.StatsRepository
	registration services.RegistrationService
	ingest       services.IngestService
	matching     services.MatchingService
}

func NewAdminService(
	userRepo repositories.UserRepository,
	photoRepo repositories.PhotoRepository,
	statsRepo repositories.StatsRepository,
	registration services.RegistrationService,
	ingest services.IngestService,
	matching services.MatchingService,
) services.AdminService {
	return &AdminServiceImpl{
		userRepo:     userRepo,
		photoRepo:    photoRepo,
		statsRepo:    statsRepo,
		registration: registration,
		ingest:       ingest,
		matching:     matching,
	}
}

func (s *AdminServiceImpl) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.statsRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

func (s *AdminServiceImpl) ListUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	users, err := s.userRepo.ListWithMatchCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	query = facematch.FoldName(strings.TrimSpace(query))
	if query == "" {
		return users, nil
	}

	filtered := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		if strings.Contains(facematch.FoldName(u.Name), query) || strings.Contains(facematch.FoldName(u.Email), query) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (s *AdminServiceImpl) ListImages(ctx context.Context) ([]models.PhotoSummary, error) {
	photos, err := s.photoRepo.ListWithMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return photos, nil
}

func (s *AdminServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.registration.Delete(ctx, userID)
}

func (s *AdminServiceImpl) DeleteImage(ctx context.Context, photoID uuid.UUID) error {
	return s.ingest.DeletePhoto(ctx, photoID)
}

func (s *AdminServiceImpl) TriggerProcessing(ctx context.Context) (*models.MatchBatch, error) {
	return s.matching.Trigger(ctx, models.BatchTriggerAdmin)
}

func (s *AdminServiceImpl) GetBatch(ctx context.Context, batchID uuid.UUID) (*models.MatchBatch, error) {
	return s.matching.GetBatch(ctx, batchID)
}

func (s *AdminServiceImpl) ListBatches(ctx context.Context, limit int) ([]models.MatchBatch, error) {
	if limit <= 0 || limit > maxBatchListing {
		limit = maxBatchListing
	}
	return s.matching.ListBatches(ctx, limit)
}
