package dto

import (
	"time"

	"github.com/google/uuid"
)

type GalleryImageResponse struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
	Similarity float64   `json:"similarity"`
}

type GalleryResponse struct {
	GalleryID string                 `json:"gallery_id"`
	UserName  string                 `json:"user_name"`
	Images    []GalleryImageResponse `json:"images"`
}
