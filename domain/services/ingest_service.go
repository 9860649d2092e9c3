package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type UploadFile struct {
	Filename string
	Data     []byte
}

type Rejection struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type IngestResult struct {
	Stored   int
	Photos   []models.Photo
	Rejected []Rejection
}

type IngestService interface {
	// Ingest stores each file as a pending photo. Files fail independently.
	Ingest(ctx context.Context, files []UploadFile) (*IngestResult, error)
	DeletePhoto(ctx context.Context, photoID uuid.UUID) error
	OpenPhoto(ctx context.Context, photoID uuid.UUID) (io.ReadCloser, *models.Photo, error)
}
