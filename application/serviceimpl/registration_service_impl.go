package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/pkg/facematch"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/metrics"
	"event-gallery/pkg/utils"
)

const galleryIDAttempts = 3

type RegistrationServiceImpl struct {
	userRepo      repositories.UserRepository
	extractor     services.FaceExtractor
	matching      services.MatchingService
	store         services.ObjectStore
	cache         services.Cache
	validate      *validator.Validate
	deleteOrphans bool
}

// NewRegistrationService wires the user registry. cache may be nil.
func NewRegistrationService(
	userRepo repositories.UserRepository,
	extractor services.FaceExtractor,
	matching services.MatchingService,
	store services.ObjectStore,
	cache services.Cache,
	deleteOrphans bool,
) services.RegistrationService {
	return &RegistrationServiceImpl{
		userRepo:      userRepo,
		extractor:     extractor,
		matching:      matching,
		store:         store,
		cache:         cache,
		validate:      utils.Validator(),
		deleteOrphans: deleteOrphans,
	}
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	user, err := s.register(ctx, input)
	result := "ok"
	if err != nil {
		result = registrationResult(err)
	}
	metrics.Registrations.WithLabelValues(result).Inc()
	return user, err
}

func (s *RegistrationServiceImpl) register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	input.Name = facematch.NormalizeName(input.Name)
	input.Email = facematch.NormalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", services.ErrValidation, utils.FormatValidationErrors(err))
	}
	if len(input.FaceImage) == 0 {
		return nil, fmt.Errorf("%w: face image is required", services.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, services.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	mimeType, _, _, err := sniffImage(input.FaceImage)
	if err != nil {
		return nil, err
	}

	faces, err := s.extractor.Extract(ctx, input.FaceImage, mimeType)
	if err != nil {
		if errors.Is(err, services.ErrExtractorUnavailable) {
			return nil, err
		}
		// the face service could not read the image at all
		return nil, fmt.Errorf("%w: %v", services.ErrNoFaceDetected, err)
	}
	switch {
	case len(faces) == 0:
		return nil, services.ErrNoFaceDetected
	case len(faces) > 1:
		return nil, services.ErrMultipleFacesDetected
	}

	user := &models.User{
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Descriptor: pgvector.NewVector(facematch.Normalize(faces[0].Embedding)),
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	logger.API("user_registered", "User registered", map[string]interface{}{
		"user_id":    user.ID.String(),
		"gallery_id": user.GalleryID,
	})

	// photos processed before this registration
	s.matching.ScheduleBackfill(ctx, user.ID)
	return user, nil
}

// create inserts the user, issuing a fresh gallery id if the previous one collided.
func (s *RegistrationServiceImpl) create(ctx context.Context, user *models.User) error {
	var err error
	for attempt := 0; attempt < galleryIDAttempts; attempt++ {
		user.ID = uuid.New()
		user.GalleryID = models.NewGalleryID()
		err = s.userRepo.Create(ctx, user)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("failed to create user: %w", err)
		}
		// a concurrent registration may have taken the email
		if _, lookupErr := s.userRepo.GetByEmail(ctx, user.Email); lookupErr == nil {
			return services.ErrEmailAlreadyRegistered
		}
	}
	return fmt.Errorf("failed to issue a unique gallery id: %w", err)
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation):
		return "invalid"
	case errors.Is(err, services.ErrNoFaceDetected):
		return "no_face"
	case errors.Is(err, services.ErrMultipleFacesDetected):
		return "multiple_faces"
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, services.ErrUnsupportedMediaType):
		return "unsupported_media"
	case errors.Is(err, services.ErrExtractorUnavailable):
		return "extractor_unavailable"
	default:
		return "error"
	}
}

func (s *RegistrationServiceImpl) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	orphans, err := s.userRepo.DeleteCascade(ctx, userID, s.deleteOrphans)
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// files go only after the rows are committed
	for _, p := range orphans {
		if err := s.store.Delete(ctx, p.StorageKey); err != nil {
			logger.StorageError("delete_orphan", "Failed to delete orphaned photo file", err, map[string]interface{}{
				"photo_id": p.ID.String(),
				"key":      p.StorageKey,
			})
		}
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, qrCacheKey(user.GalleryID)); err != nil {
			logger.Warn(logger.CategoryStorage, "qr_cache_evict", "Failed to evict QR code", map[string]interface{}{"error": err.Error()})
		}
	}

	logger.API("user_deleted", "User deleted", map[string]interface{}{
		"user_id":         userID.String(),
		"orphans_deleted": len(orphans),
	})
	return nil
}
