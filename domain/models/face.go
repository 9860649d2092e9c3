package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// PhotoFace is one face descriptor extracted from a photo.
type PhotoFace struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PhotoID uuid.UUID `gorm:"type:uuid;not null;index"`

	Embedding pgvector.Vector `gorm:"type:vector;not null"`

	// Bounding box (normalized 0-1)
	BboxX      float64 `gorm:"not null"`
	BboxY      float64 `gorm:"not null"`
	BboxWidth  float64 `gorm:"not null"`
	BboxHeight float64 `gorm:"not null"`

	Confidence float64 `gorm:"not null"`

	CreatedAt time.Time

	Photo Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE"`
}

func (PhotoFace) TableName() string {
	return "photo_faces"
}
