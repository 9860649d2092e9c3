package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByGalleryID(ctx context.Context, galleryID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("gallery_id = ?", galleryID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ListDescriptors(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error
	return users, translate(err)
}

func (r *UserRepositoryImpl) ListWithMatchCounts(ctx context.Context) ([]models.UserSummary, error) {
	var rows []models.UserSummary
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id, u.gallery_id, u.name, u.email, u.phone, u.created_at, COUNT(m.photo_id) AS match_count").
		Joins("LEFT JOIN photo_matches m ON m.user_id = u.id").
		Group("u.id").
		Order("u.created_at DESC, u.id DESC").
		Scan(&rows).Error
	return rows, translate(err)
}

func (r *UserRepositoryImpl) DeleteCascade(ctx context.Context, id uuid.UUID, deleteOrphans bool) ([]models.Photo, error) {
	var orphans []models.Photo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var matched []uuid.UUID
		if deleteOrphans {
			if err := tx.Model(&models.Match{}).Where("user_id = ?", id).Pluck("photo_id", &matched).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Match{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}

		if len(matched) == 0 {
			return nil
		}
		if err := tx.Where("id IN ?", matched).
			Where("NOT EXISTS (SELECT 1 FROM photo_matches m WHERE m.photo_id = photos.id)").
			Find(&orphans).Error; err != nil {
			return err
		}
		if len(orphans) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(orphans))
		for i := range orphans {
			ids[i] = orphans[i].ID
		}
		if err := tx.Where("photo_id IN ?", ids).Delete(&models.PhotoFace{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Photo{}).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return orphans, nil
}
