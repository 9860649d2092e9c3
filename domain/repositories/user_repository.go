package repositories

import (
	"context"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByGalleryID(ctx context.Context, galleryID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ListDescriptors returns every user with its descriptor, for a matching snapshot.
	ListDescriptors(ctx context.Context) ([]models.User, error)
	// ListWithMatchCounts returns users without descriptors, newest first.
	ListWithMatchCounts(ctx context.Context) ([]models.UserSummary, error)

	// DeleteCascade removes the user and its matches in one transaction. With
	// deleteOrphans it also removes photos left without any match and returns them.
	DeleteCascade(ctx context.Context, id uuid.UUID, deleteOrphans bool) ([]models.Photo, error)
}
