package services

import (
	"context"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type RegisterInput struct {
	Name      string `validate:"required,max=120"`
	Email     string `validate:"required,email"`
	Phone     string `validate:"required,min=3,max=40"`
	FaceImage []byte `validate:"required"`
}

type RegistrationService interface {
	// Register stores a user with the single face found in FaceImage and
	// returns it with its new gallery id.
	Register(ctx context.Context, input RegisterInput) (*models.User, error)

	// Delete removes a user and its matches in one transaction.
	Delete(ctx context.Context, userID uuid.UUID) error
}
