package models

import (
	"time"

	"github.com/google/uuid"
)

type PhotoStatus string

const (
	PhotoStatusPending    PhotoStatus = "pending"
	PhotoStatusProcessing PhotoStatus = "processing" // claimed by a running batch
	PhotoStatusProcessed  PhotoStatus = "processed"
)

type Photo struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Filename     string    `gorm:"uniqueIndex;not null"` // <id><ext>, used in gallery URLs
	OriginalName string
	StorageKey   string `gorm:"not null"`
	ContentType  string
	SizeBytes    int64
	Width        int
	Height       int

	// Matching state
	Status      PhotoStatus `gorm:"type:varchar(16);default:'pending';not null;index"`
	FaceCount   int         `gorm:"default:0"`
	Attempts    int         `gorm:"default:0"`
	LastError   string      `gorm:"type:text"`
	ClaimedBy   *uuid.UUID  `gorm:"type:uuid"`
	ClaimedAt   *time.Time
	ProcessedAt *time.Time

	UploadedAt time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time
}

func (Photo) TableName() string {
	return "photos"
}

// IsProcessed reports whether matching finished for this photo.
func (p *Photo) IsProcessed() bool {
	return p.Status == PhotoStatusProcessed
}

// PhotoSummary is a Photo with the ids of the users it matched.
type PhotoSummary struct {
	Photo
	UserIDs []uuid.UUID
}
