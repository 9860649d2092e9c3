package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type GalleryImage struct {
	PhotoID    uuid.UUID
	Filename   string
	URL        string
	UploadedAt time.Time
	Similarity float64
}

type Gallery struct {
	GalleryID string
	UserName  string
	Images    []GalleryImage
}

type GalleryService interface {
	Resolve(ctx context.Context, galleryID string) (*Gallery, error)
	// OpenPhoto streams a photo only if it is matched to the gallery.
	OpenPhoto(ctx context.Context, galleryID, filename string) (io.ReadCloser, *models.Photo, error)
	QRCode(ctx context.Context, galleryID string) ([]byte, error)
}
