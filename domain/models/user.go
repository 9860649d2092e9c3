package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// User is an attendee who registered a reference face.
type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	GalleryID string    `gorm:"uniqueIndex;not null;size:64"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Phone     string    `gorm:"not null"`

	// Unit-length reference descriptor; dimension depends on the face model.
	Descriptor pgvector.Vector `gorm:"type:vector;not null"`

	CreatedAt time.Time `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// NewGalleryID returns an opaque gallery token: a random UUID without dashes.
func NewGalleryID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// UserSummary is a User with its match count, used by admin listings.
type UserSummary struct {
	User
	MatchCount int64
}
