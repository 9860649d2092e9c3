package dto

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	AdminID   uuid.UUID `json:"admin_id"`
}

// UserResponse never carries the descriptor.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	GalleryID  string    `json:"gallery_id"`
	CreatedAt  time.Time `json:"created_at"`
	MatchCount int64     `json:"match_count"`
}

type ImageResponse struct {
	ID           uuid.UUID   `json:"id"`
	Filename     string      `json:"filename"`
	OriginalName string      `json:"original_name"`
	ContentType  string      `json:"content_type"`
	SizeBytes    int64       `json:"size_bytes"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Processed    bool        `json:"processed"`
	Status       string      `json:"status"`
	FaceCount    int         `json:"face_count"`
	Attempts     int         `json:"attempts"`
	LastError    string      `json:"last_error,omitempty"`
	UploadedAt   time.Time   `json:"uploaded_at"`
	ProcessedAt  *time.Time  `json:"processed_at,omitempty"`
	UserMatches  []uuid.UUID `json:"user_matches"`
	MatchCount   int         `json:"match_count"`
}

type RejectedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type UploadResponse struct {
	Success       bool            `json:"success"`
	UploadedCount int             `json:"uploaded_count"`
	Files         []ImageResponse `json:"files"`
	Rejected      []RejectedFile  `json:"rejected"`
}

type ProcessResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	BatchID uuid.UUID `json:"batch_id"`
	Status  string    `json:"status"`
}
