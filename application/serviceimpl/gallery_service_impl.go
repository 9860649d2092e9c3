package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/skip2/go-qrcode"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/pkg/logger"
)

func qrCacheKey(galleryID string) string {
	return "qrcode:" + galleryID
}

type GalleryServiceImpl struct {
	userRepo    repositories.UserRepository
	matchRepo   repositories.MatchRepository
	store       services.ObjectStore
	cache       services.Cache
	frontendURL string
	qrSize      int
	qrTTL       time.Duration
}

// NewGalleryService builds the gallery assembler. cache may be nil.
func NewGalleryService(
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	store services.ObjectStore,
	cache services.Cache,
	frontendURL string,
	qrSize int,
	qrTTL time.Duration,
) services.GalleryService {
	if qrSize <= 0 {
		qrSize = 256
	}
	return &GalleryServiceImpl{
		userRepo:    userRepo,
		matchRepo:   matchRepo,
		store:       store,
		cache:       cache,
		frontendURL: frontendURL,
		qrSize:      qrSize,
		qrTTL:       qrTTL,
	}
}

func (s *GalleryServiceImpl) lookup(ctx context.Context, galleryID string) (*models.User, error) {
	if galleryID == "" {
		return nil, services.ErrGalleryNotFound
	}
	user, err := s.userRepo.GetByGalleryID(ctx, galleryID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, services.ErrGalleryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}
	return user, nil
}

func (s *GalleryServiceImpl) Resolve(ctx context.Context, galleryID string) (*services.Gallery, error) {
	user, err := s.lookup(ctx, galleryID)
	if err != nil {
		return nil, err
	}

	photos, err := s.matchRepo.ListGallery(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}

	gallery := &services.Gallery{
		GalleryID: user.GalleryID,
		UserName:  user.Name,
		Images:    make([]services.GalleryImage, 0, len(photos)),
	}
	for _, p := range photos {
		gallery.Images = append(gallery.Images, services.GalleryImage{
			PhotoID:    p.ID,
			Filename:   p.Filename,
			URL:        imageURL(user.GalleryID, p.Filename),
			UploadedAt: p.UploadedAt,
			Similarity: p.Similarity,
		})
	}
	return gallery, nil
}

// imageURL is the relative route serving a gallery photo.
func imageURL(galleryID, filename string) string {
	return "/api/image/" + url.PathEscape(galleryID) + "/" + url.PathEscape(filename)
}

func (s *GalleryServiceImpl) OpenPhoto(ctx context.Context, galleryID, filename string) (io.ReadCloser, *models.Photo, error) {
	user, err := s.lookup(ctx, galleryID)
	if err != nil {
		return nil, nil, err
	}
	photo, err := s.matchRepo.FindPhotoForUser(ctx, user.ID, filename)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, services.ErrPhotoNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return openObject(ctx, s.store, photo)
}

func (s *GalleryServiceImpl) QRCode(ctx context.Context, galleryID string) ([]byte, error) {
	if s.cache != nil {
		png, ok, err := s.cache.Get(ctx, qrCacheKey(galleryID))
		if err != nil {
			logger.Warn(logger.CategoryStorage, "qr_cache_get", "QR cache unavailable", map[string]interface{}{"error": err.Error()})
		} else if ok {
			return png, nil
		}
	}

	user, err := s.lookup(ctx, galleryID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.galleryLink(user.GalleryID), qrcode.Medium, s.qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, qrCacheKey(galleryID), png, s.qrTTL); err != nil {
			logger.Warn(logger.CategoryStorage, "qr_cache_set", "Failed to cache QR code", map[string]interface{}{"error": err.Error()})
		}
	}
	return png, nil
}

func (s *GalleryServiceImpl) galleryLink(galleryID string) string {
	return s.frontendURL + "/gallery/" + url.PathEscape(galleryID)
}
