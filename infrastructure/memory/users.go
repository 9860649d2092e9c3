package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.GalleryID == user.GalleryID {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, ok := r.s.users[user.ID]; ok {
		return repositories.ErrDuplicate
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByGalleryID(_ context.Context, galleryID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.GalleryID == galleryID })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) find(pred func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if pred(u) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) sorted(desc bool) []models.User {
	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) != desc
		}
		return (a.ID.String() < b.ID.String()) != desc
	})
	return users
}

func (r *userRepo) ListDescriptors(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(false), nil
}

func (r *userRepo) ListWithMatchCounts(_ context.Context) ([]models.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[uuid.UUID]int64)
	for k := range r.s.matches {
		counts[k.userID]++
	}
	users := r.sorted(true)
	out := make([]models.UserSummary, len(users))
	for i, u := range users {
		u.Descriptor = pgvector.Vector{}
		out[i] = models.UserSummary{User: u, MatchCount: counts[u.ID]}
	}
	return out, nil
}

func (r *userRepo) DeleteCascade(_ context.Context, id uuid.UUID, deleteOrphans bool) ([]models.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return nil, repositories.ErrNotFound
	}

	var matched []uuid.UUID
	for k := range r.s.matches {
		if k.userID == id {
			matched = append(matched, k.photoID)
		}
	}
	r.s.deleteMatchesWhere(func(m models.Match) bool { return m.UserID != id })
	delete(r.s.users, id)

	if !deleteOrphans {
		return nil, nil
	}
	var orphans []models.Photo
	for _, pid := range matched {
		if r.s.photoHasMatches(pid) {
			continue
		}
		if p, ok := r.s.photos[pid]; ok {
			orphans = append(orphans, p)
			delete(r.s.photos, pid)
			delete(r.s.faces, pid)
		}
	}
	return orphans, nil
}
