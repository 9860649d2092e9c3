package dto

import "github.com/google/uuid"

// RegisterRequest is the JSON registration body. FaceImageData is base64,
// optionally wrapped in a data URL.
type RegisterRequest struct {
	Name          string `json:"name" form:"name"`
	Email         string `json:"email" form:"email"`
	Phone         string `json:"phone" form:"phone"`
	FaceImageData string `json:"face_image_data" form:"face_image_data"`
}

type RegisterResponse struct {
	Success   bool      `json:"success"`
	UserID    uuid.UUID `json:"user_id"`
	GalleryID string    `json:"gallery_id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
}
