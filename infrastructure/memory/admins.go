package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type adminRepo struct{ s *Store }

func (r *adminRepo) Create(_ context.Context, admin *models.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.admins {
		if a.Email == admin.Email {
			return repositories.ErrDuplicate
		}
	}
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CreatedAt = time.Now()
	r.s.admins[admin.ID] = *admin
	return nil
}

func (r *adminRepo) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *adminRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.admins)), nil
}

func (r *adminRepo) TouchLogin(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return repositories.ErrNotFound
	}
	now := time.Now()
	a.LastLoginAt = &now
	r.s.admins[id] = a
	return nil
}
