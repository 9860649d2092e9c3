package repositories

import (
	"context"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
	TouchLogin(ctx context.Context, id uuid.UUID) error
}
