package services

import (
	"context"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type AdminService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	// ListUsers filters by name or email when query is not empty.
	ListUsers(ctx context.Context, query string) ([]models.UserSummary, error)
	ListImages(ctx context.Context) ([]models.PhotoSummary, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	DeleteImage(ctx context.Context, photoID uuid.UUID) error
	TriggerProcessing(ctx context.Context) (*models.MatchBatch, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*models.MatchBatch, error)
	ListBatches(ctx context.Context, limit int) ([]models.MatchBatch, error)
}

type AuthService interface {
	// Login checks admin credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (string, *models.AdminUser, error)
	CreateAdmin(ctx context.Context, email, password string) (*models.AdminUser, error)
	// EnsureDefaultAdmin seeds the configured admin when none exists.
	EnsureDefaultAdmin(ctx context.Context) error
}
