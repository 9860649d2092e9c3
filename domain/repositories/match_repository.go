package repositories

import (
	"context"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type MatchRepository interface {
	// ListGallery returns the photos matched to a user, oldest upload first.
	ListGallery(ctx context.Context, userID uuid.UUID) ([]models.GalleryPhoto, error)
	// FindPhotoForUser returns the photo with filename only if it matched the user.
	FindPhotoForUser(ctx context.Context, userID uuid.UUID, filename string) (*models.Photo, error)
	// BackfillUser matches a user against the stored faces of processed photos.
	BackfillUser(ctx context.Context, user *models.User, threshold float64) (int, error)
}
