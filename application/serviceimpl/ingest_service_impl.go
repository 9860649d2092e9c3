package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/metrics"
)

const originalsPrefix = "originals/"

type IngestServiceImpl struct {
	photoRepo    repositories.PhotoRepository
	store        services.ObjectStore
	maxFileBytes int64
}

func NewIngestService(photoRepo repositories.PhotoRepository, store services.ObjectStore, maxFileBytes int64) services.IngestService {
	return &IngestServiceImpl{
		photoRepo:    photoRepo,
		store:        store,
		maxFileBytes: maxFileBytes,
	}
}

func (s *IngestServiceImpl) Ingest(ctx context.Context, files []services.UploadFile) (*services.IngestResult, error) {
	result := &services.IngestResult{
		Photos:   []models.Photo{},
		Rejected: []services.Rejection{},
	}

	for _, f := range files {
		photo, err := s.ingestOne(ctx, f)
		if err != nil {
			metrics.PhotosIngested.WithLabelValues("rejected").Inc()
			logger.IngestWarn("file_rejected", "Upload rejected", err, map[string]interface{}{
				"filename": f.Filename,
				"size":     len(f.Data),
			})
			result.Rejected = append(result.Rejected, services.Rejection{Filename: f.Filename, Reason: err.Error()})
			continue
		}
		metrics.PhotosIngested.WithLabelValues("stored").Inc()
		result.Photos = append(result.Photos, *photo)
		result.Stored++
	}

	logger.Ingest("upload_completed", "Upload processed", map[string]interface{}{
		"stored":   result.Stored,
		"rejected": len(result.Rejected),
	})
	return result, nil
}

func (s *IngestServiceImpl) ingestOne(ctx context.Context, f services.UploadFile) (*models.Photo, error) {
	if s.maxFileBytes > 0 && int64(len(f.Data)) > s.maxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", services.ErrFileTooLarge, len(f.Data), s.maxFileBytes)
	}

	mimeType, ext, cfg, err := sniffImage(f.Data)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	filename := id.String() + ext
	photo := &models.Photo{
		ID:           id,
		Filename:     filename,
		OriginalName: filepath.Base(f.Filename),
		StorageKey:   originalsPrefix + filename,
		ContentType:  mimeType,
		SizeBytes:    int64(len(f.Data)),
		Width:        cfg.Width,
		Height:       cfg.Height,
		Status:       models.PhotoStatusPending,
		UploadedAt:   time.Now(),
	}

	if err := s.store.Put(ctx, photo.StorageKey, f.Data, mimeType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		if delErr := s.store.Delete(ctx, photo.StorageKey); delErr != nil {
			logger.StorageError("rollback_delete", "Failed to remove stored file after insert error", delErr, map[string]interface{}{
				"key": photo.StorageKey,
			})
		}
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	return photo, nil
}

func (s *IngestServiceImpl) DeletePhoto(ctx context.Context, photoID uuid.UUID) error {
	photo, err := s.photoRepo.DeleteCascade(ctx, photoID)
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrPhotoNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	if err := s.store.Delete(ctx, photo.StorageKey); err != nil {
		logger.StorageError("delete_file", "Failed to delete photo file", err, map[string]interface{}{
			"photo_id": photoID.String(),
			"key":      photo.StorageKey,
		})
	}
	logger.Ingest("photo_deleted", "Photo deleted", map[string]interface{}{"photo_id": photoID.String()})
	return nil
}

func (s *IngestServiceImpl) OpenPhoto(ctx context.Context, photoID uuid.UUID) (io.ReadCloser, *models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, services.ErrPhotoNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return openObject(ctx, s.store, photo)
}

// openObject streams a photo's file, mapping a missing object to ErrPhotoNotFound.
func openObject(ctx context.Context, store services.ObjectStore, photo *models.Photo) (io.ReadCloser, *models.Photo, error) {
	rc, err := store.Get(ctx, photo.StorageKey)
	if errors.Is(err, services.ErrObjectNotFound) {
		return nil, nil, services.ErrPhotoNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open photo: %w", err)
	}
	return rc, photo, nil
}
