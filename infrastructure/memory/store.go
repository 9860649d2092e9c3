// Package memory is an in-process store implementing every repository with
// the same claim and uniqueness rules as the Postgres one. It backs
// DB_DRIVER=memory and the service tests.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type matchKey struct {
	userID  uuid.UUID
	photoID uuid.UUID
}

// Store holds all tables behind one mutex, so every method is a transaction.
type Store struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]models.User
	photos  map[uuid.UUID]models.Photo
	faces   map[uuid.UUID][]models.PhotoFace // by photo
	matches map[matchKey]models.Match
	admins  map[uuid.UUID]models.AdminUser
	batches map[uuid.UUID]models.MatchBatch
}

func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]models.User),
		photos:  make(map[uuid.UUID]models.Photo),
		faces:   make(map[uuid.UUID][]models.PhotoFace),
		matches: make(map[matchKey]models.Match),
		admins:  make(map[uuid.UUID]models.AdminUser),
		batches: make(map[uuid.UUID]models.MatchBatch),
	}
}

func (s *Store) Users() repositories.UserRepository { return &userRepo{s} }

func (s *Store) Photos() repositories.PhotoRepository { return &photoRepo{s} }

func (s *Store) Matches() repositories.MatchRepository { return &matchRepo{s} }

func (s *Store) Admins() repositories.AdminRepository { return &adminRepo{s} }

func (s *Store) Batches() repositories.BatchRepository { return &batchRepo{s} }

func (s *Store) Stats() repositories.StatsRepository { return &statsRepo{s} }

// AllMatches returns every match row, ordered by user then photo.
func (s *Store) AllMatches() []models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID.String() < out[j].UserID.String()
		}
		return out[i].PhotoID.String() < out[j].PhotoID.String()
	})
	return out
}

// Faces returns the stored faces of a photo.
func (s *Store) Faces(photoID uuid.UUID) []models.PhotoFace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PhotoFace(nil), s.faces[photoID]...)
}

func (s *Store) deleteMatchesWhere(keep func(models.Match) bool) {
	for k, m := range s.matches {
		if !keep(m) {
			delete(s.matches, k)
		}
	}
}

func (s *Store) photoHasMatches(photoID uuid.UUID) bool {
	for k := range s.matches {
		if k.photoID == photoID {
			return true
		}
	}
	return false
}
