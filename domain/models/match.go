package models

import (
	"time"

	"github.com/google/uuid"
)

// Match links a user to a photo containing their face. There is at most one
// row per (user, photo); it keeps the best-scoring face.
type Match struct {
	UserID     uuid.UUID  `gorm:"primaryKey;type:uuid"`
	PhotoID    uuid.UUID  `gorm:"primaryKey;type:uuid;index"`
	FaceID     *uuid.UUID `gorm:"type:uuid"`
	Distance   float64    `gorm:"not null"` // cosine distance
	Similarity float64    `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Photo Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE"`
}

func (Match) TableName() string {
	return "photo_matches"
}

// MatchCandidate is a match computed by the engine, before it is stored.
type MatchCandidate struct {
	UserID   uuid.UUID
	FaceID   uuid.UUID
	Distance float64
}

// GalleryPhoto is a matched photo as listed in a gallery.
type GalleryPhoto struct {
	Photo
	Similarity float64
}
