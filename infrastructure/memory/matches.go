package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/pkg/facematch"
)

type matchRepo struct{ s *Store }

func (r *matchRepo) ListGallery(_ context.Context, userID uuid.UUID) ([]models.GalleryPhoto, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var photos []models.Photo
	similarity := make(map[uuid.UUID]float64)
	for k, m := range r.s.matches {
		if k.userID != userID {
			continue
		}
		if p, ok := r.s.photos[k.photoID]; ok {
			photos = append(photos, p)
			similarity[p.ID] = m.Similarity
		}
	}
	byUpload(photos, false)

	out := make([]models.GalleryPhoto, len(photos))
	for i, p := range photos {
		out[i] = models.GalleryPhoto{Photo: p, Similarity: similarity[p.ID]}
	}
	return out, nil
}

func (r *matchRepo) FindPhotoForUser(_ context.Context, userID uuid.UUID, filename string) (*models.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for k := range r.s.matches {
		if k.userID != userID {
			continue
		}
		if p, ok := r.s.photos[k.photoID]; ok && p.Filename == filename {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *matchRepo) BackfillUser(_ context.Context, user *models.User, threshold float64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return 0, nil
	}
	descriptor := user.Descriptor.Slice()
	now := time.Now()
	recorded := 0
	for photoID, faces := range r.s.faces {
		if p, ok := r.s.photos[photoID]; !ok || p.Status != models.PhotoStatusProcessed {
			continue
		}
		best := -1
		bestDist := threshold
		for i, f := range faces {
			d := facematch.CosineDistance(descriptor, f.Embedding.Slice())
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			continue
		}
		faceID := faces[best].ID
		upsertMatch(r.s, models.Match{
			UserID:     user.ID,
			PhotoID:    photoID,
			FaceID:     &faceID,
			Distance:   bestDist,
			Similarity: 1 - bestDist,
		}, now)
		recorded++
	}
	return recorded, nil
}
