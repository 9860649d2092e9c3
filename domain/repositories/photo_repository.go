package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
)

type PhotoRepository interface {
	// CRUD
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	GetByFilename(ctx context.Context, filename string) (*models.Photo, error)
	ListWithMatches(ctx context.Context) ([]models.PhotoSummary, error)
	// DeleteCascade removes the photo with its faces and matches and returns the deleted row.
	DeleteCascade(ctx context.Context, id uuid.UUID) (*models.Photo, error)

	// Matching state machine
	ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	// Claim moves a pending photo to processing for batchID. It returns false if
	// the photo was not pending.
	Claim(ctx context.Context, id, batchID uuid.UUID) (bool, error)
	// Release returns a photo claimed by batchID to pending and records the reason.
	Release(ctx context.Context, id, batchID uuid.UUID, reason string) error
	// CompleteProcessing stores the faces and matches of a claimed photo and marks
	// it processed, all in one transaction. It returns the number of match rows
	// written or ErrClaimLost if batchID no longer holds the claim. Matches for
	// users deleted before the call are skipped; ErrReferenceMissing only
	// surfaces when a user is deleted while the transaction runs.
	CompleteProcessing(ctx context.Context, id, batchID uuid.UUID, faces []*models.PhotoFace, matches []models.MatchCandidate) (int, error)
	// ReleaseStale returns photos claimed before now-olderThan to pending.
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
