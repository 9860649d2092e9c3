package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type MatchRepositoryImpl struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) repositories.MatchRepository {
	return &MatchRepositoryImpl{db: db}
}

func (r *MatchRepositoryImpl) ListGallery(ctx context.Context, userID uuid.UUID) ([]models.GalleryPhoto, error) {
	var rows []models.GalleryPhoto
	err := r.db.WithContext(ctx).
		Table("photo_matches m").
		Select("p.*, m.similarity").
		Joins("JOIN photos p ON p.id = m.photo_id").
		Where("m.user_id = ?", userID).
		Order("p.uploaded_at ASC, p.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	if rows == nil {
		rows = []models.GalleryPhoto{}
	}
	return rows, nil
}

func (r *MatchRepositoryImpl) FindPhotoForUser(ctx context.Context, userID uuid.UUID, filename string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).
		Joins("JOIN photo_matches m ON m.photo_id = photos.id AND m.user_id = ?", userID).
		Where("photos.filename = ?", filename).
		First(&photo).Error
	if err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

// backfillSQL keeps the closest face per processed photo strictly below the threshold.
const backfillSQL = `
INSERT INTO photo_matches (user_id, photo_id, face_id, distance, similarity, created_at, updated_at)
SELECT u.id, best.photo_id, best.face_id, best.distance, 1 - best.distance, now(), now()
FROM users u
JOIN (
	SELECT DISTINCT ON (f.photo_id) f.photo_id, f.id AS face_id, (f.embedding <=> @descriptor) AS distance
	FROM photo_faces f
	JOIN photos p ON p.id = f.photo_id
	WHERE p.status = 'processed'
		AND vector_dims(f.embedding) = vector_dims(@descriptor::vector)
		AND (f.embedding <=> @descriptor) < @threshold
	ORDER BY f.photo_id, f.embedding <=> @descriptor, f.id
) best ON true
WHERE u.id = @user_id
ON CONFLICT (user_id, photo_id) DO UPDATE SET
	face_id = CASE WHEN EXCLUDED.distance < photo_matches.distance THEN EXCLUDED.face_id ELSE photo_matches.face_id END,
	distance = LEAST(photo_matches.distance, EXCLUDED.distance),
	similarity = GREATEST(photo_matches.similarity, EXCLUDED.similarity),
	updated_at = EXCLUDED.updated_at`

func (r *MatchRepositoryImpl) BackfillUser(ctx context.Context, user *models.User, threshold float64) (int, error) {
	res := r.db.WithContext(ctx).Exec(backfillSQL, map[string]interface{}{
		"descriptor": user.Descriptor,
		"threshold":  threshold,
		"user_id":    user.ID,
	})
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return int(res.RowsAffected), nil
}
