package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type PhotoRepositoryImpl struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) repositories.PhotoRepository {
	return &PhotoRepositoryImpl{db: db}
}

func (r *PhotoRepositoryImpl) Create(ctx context.Context, photo *models.Photo) error {
	return translate(r.db.WithContext(ctx).Create(photo).Error)
}

func (r *PhotoRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error; err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

func (r *PhotoRepositoryImpl) GetByFilename(ctx context.Context, filename string) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).Where("filename = ?", filename).First(&photo).Error; err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

func (r *PhotoRepositoryImpl) ListWithMatches(ctx context.Context) ([]models.PhotoSummary, error) {
	var photos []models.Photo
	if err := r.db.WithContext(ctx).Order("uploaded_at DESC, id DESC").Find(&photos).Error; err != nil {
		return nil, translate(err)
	}
	if len(photos) == 0 {
		return []models.PhotoSummary{}, nil
	}

	var matches []models.Match
	if err := r.db.WithContext(ctx).
		Select("user_id", "photo_id").
		Order("photo_id, user_id").
		Find(&matches).Error; err != nil {
		return nil, translate(err)
	}
	byPhoto := make(map[uuid.UUID][]uuid.UUID)
	for _, m := range matches {
		byPhoto[m.PhotoID] = append(byPhoto[m.PhotoID], m.UserID)
	}

	out := make([]models.PhotoSummary, len(photos))
	for i, p := range photos {
		out[i] = models.PhotoSummary{Photo: p, UserIDs: byPhoto[p.ID]}
	}
	return out, nil
}

func (r *PhotoRepositoryImpl) DeleteCascade(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&photo).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.Match{}).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoFace{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Photo{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

func (r *PhotoRepositoryImpl) ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("status = ?", models.PhotoStatusPending).
		Order("uploaded_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("id", &ids).Error
	return ids, translate(err)
}

func (r *PhotoRepositoryImpl) Claim(ctx context.Context, id, batchID uuid.UUID) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id = ? AND status = ?", id, models.PhotoStatusPending).
		Updates(map[string]interface{}{
			"status":     models.PhotoStatusProcessing,
			"claimed_by": batchID,
			"claimed_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PhotoRepositoryImpl) Release(ctx context.Context, id, batchID uuid.UUID, reason string) error {
	return translate(r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id = ? AND status = ? AND claimed_by = ?", id, models.PhotoStatusProcessing, batchID).
		Updates(map[string]interface{}{
			"status":     models.PhotoStatusPending,
			"claimed_by": nil,
			"claimed_at": nil,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
			"updated_at": time.Now(),
		}).Error)
}

// upsertMatchSQL inserts only for users that still exist and keeps the
// closest face on conflict.
const upsertMatchSQL = `
INSERT INTO photo_matches (user_id, photo_id, face_id, distance, similarity, created_at, updated_at)
SELECT u.id, ?, ?, ?, ?, ?, ? FROM users u WHERE u.id = ?
ON CONFLICT (user_id, photo_id) DO UPDATE SET
	face_id = CASE WHEN EXCLUDED.distance < photo_matches.distance THEN EXCLUDED.face_id ELSE photo_matches.face_id END,
	distance = LEAST(photo_matches.distance, EXCLUDED.distance),
	similarity = GREATEST(photo_matches.similarity, EXCLUDED.similarity),
	updated_at = EXCLUDED.updated_at`

func (r *PhotoRepositoryImpl) CompleteProcessing(ctx context.Context, id, batchID uuid.UUID, faces []*models.PhotoFace, matches []models.MatchCandidate) (int, error) {
	recorded := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		// The status update runs first so the row lock is held for the rest
		res := tx.Model(&models.Photo{}).
			Where("id = ? AND status = ? AND claimed_by = ?", id, models.PhotoStatusProcessing, batchID).
			Updates(map[string]interface{}{
				"status":       models.PhotoStatusProcessed,
				"face_count":   len(faces),
				"processed_at": now,
				"claimed_by":   nil,
				"claimed_at":   nil,
				"last_error":   "",
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrClaimLost
		}

		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoFace{}).Error; err != nil {
			return err
		}
		if len(faces) > 0 {
			if err := tx.CreateInBatches(faces, 50).Error; err != nil {
				return err
			}
		}

		for _, m := range matches {
			res := tx.Exec(upsertMatchSQL, id, m.FaceID, m.Distance, 1-m.Distance, now, now, m.UserID)
			if res.Error != nil {
				return res.Error
			}
			recorded += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return recorded, nil
}

func (r *PhotoRepositoryImpl) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("status = ? AND claimed_at < ?", models.PhotoStatusProcessing, time.Now().Add(-olderThan)).
		Updates(map[string]interface{}{
			"status":     models.PhotoStatusPending,
			"claimed_by": nil,
			"claimed_at": nil,
			"last_error": "claim expired",
			"updated_at": time.Now(),
		})
	return res.RowsAffected, translate(res.Error)
}
