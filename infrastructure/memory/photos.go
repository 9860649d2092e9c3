package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type photoRepo struct{ s *Store }

func (r *photoRepo) Create(_ context.Context, photo *models.Photo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	if _, ok := r.s.photos[photo.ID]; ok {
		return repositories.ErrDuplicate
	}
	for _, p := range r.s.photos {
		if p.Filename == photo.Filename {
			return repositories.ErrDuplicate
		}
	}
	if photo.Status == "" {
		photo.Status = models.PhotoStatusPending
	}
	now := time.Now()
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = now
	}
	photo.UpdatedAt = now
	r.s.photos[photo.ID] = *photo
	return nil
}

func (r *photoRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.photos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *photoRepo) GetByFilename(_ context.Context, filename string) (*models.Photo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.photos {
		if p.Filename == filename {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// byUpload orders photos by upload time then id.
func byUpload(photos []models.Photo, desc bool) {
	sort.Slice(photos, func(i, j int) bool {
		a, b := photos[i], photos[j]
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.Before(b.UploadedAt) != desc
		}
		return (a.ID.String() < b.ID.String()) != desc
	})
}

func (r *photoRepo) ListWithMatches(_ context.Context) ([]models.PhotoSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	photos := make([]models.Photo, 0, len(r.s.photos))
	for _, p := range r.s.photos {
		photos = append(photos, p)
	}
	byUpload(photos, true)

	users := make(map[uuid.UUID][]uuid.UUID)
	for k := range r.s.matches {
		users[k.photoID] = append(users[k.photoID], k.userID)
	}
	out := make([]models.PhotoSummary, len(photos))
	for i, p := range photos {
		ids := users[p.ID]
		sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
		out[i] = models.PhotoSummary{Photo: p, UserIDs: ids}
	}
	return out, nil
}

func (r *photoRepo) DeleteCascade(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.photos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	r.s.deleteMatchesWhere(func(m models.Match) bool { return m.PhotoID != id })
	delete(r.s.faces, id)
	delete(r.s.photos, id)
	return &p, nil
}

func (r *photoRepo) ListPendingIDs(_ context.Context, limit int) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var pending []models.Photo
	for _, p := range r.s.photos {
		if p.Status == models.PhotoStatusPending {
			pending = append(pending, p)
		}
	}
	byUpload(pending, false)
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	ids := make([]uuid.UUID, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
	}
	return ids, nil
}

func (r *photoRepo) Claim(_ context.Context, id, batchID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.photos[id]
	if !ok || p.Status != models.PhotoStatusPending {
		return false, nil
	}
	now := time.Now()
	b := batchID
	p.Status = models.PhotoStatusProcessing
	p.ClaimedBy = &b
	p.ClaimedAt = &now
	p.UpdatedAt = now
	r.s.photos[id] = p
	return true, nil
}

func (r *photoRepo) holds(p models.Photo, batchID uuid.UUID) bool {
	return p.Status == models.PhotoStatusProcessing && p.ClaimedBy != nil && *p.ClaimedBy == batchID
}

func (r *photoRepo) Release(_ context.Context, id, batchID uuid.UUID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.photos[id]
	if !ok || !r.holds(p, batchID) {
		return nil
	}
	p.Status = models.PhotoStatusPending
	p.ClaimedBy = nil
	p.ClaimedAt = nil
	p.Attempts++
	p.LastError = reason
	p.UpdatedAt = time.Now()
	r.s.photos[id] = p
	return nil
}

func (r *photoRepo) CompleteProcessing(_ context.Context, id, batchID uuid.UUID, faces []*models.PhotoFace, matches []models.MatchCandidate) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.photos[id]
	if !ok || !r.holds(p, batchID) {
		return 0, repositories.ErrClaimLost
	}

	now := time.Now()
	stored := make([]models.PhotoFace, len(faces))
	for i, f := range faces {
		if f.ID == uuid.Nil {
			f.ID = uuid.New()
		}
		f.PhotoID = id
		f.CreatedAt = now
		stored[i] = *f
	}
	r.s.faces[id] = stored

	recorded := 0
	for _, c := range matches {
		if _, ok := r.s.users[c.UserID]; !ok {
			continue
		}
		faceID := c.FaceID
		upsertMatch(r.s, models.Match{
			UserID:     c.UserID,
			PhotoID:    id,
			FaceID:     &faceID,
			Distance:   c.Distance,
			Similarity: 1 - c.Distance,
		}, now)
		recorded++
	}

	p.Status = models.PhotoStatusProcessed
	p.FaceCount = len(faces)
	p.ProcessedAt = &now
	p.ClaimedBy = nil
	p.ClaimedAt = nil
	p.LastError = ""
	p.UpdatedAt = now
	r.s.photos[id] = p
	return recorded, nil
}

// upsertMatch keeps the closer face for an existing (user, photo) pair.
func upsertMatch(s *Store, m models.Match, now time.Time) {
	k := matchKey{userID: m.UserID, photoID: m.PhotoID}
	if cur, ok := s.matches[k]; ok {
		if m.Distance < cur.Distance {
			cur.FaceID = m.FaceID
			cur.Distance = m.Distance
			cur.Similarity = m.Similarity
		}
		cur.UpdatedAt = now
		s.matches[k] = cur
		return
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	s.matches[k] = m
}

func (r *photoRepo) ReleaseStale(_ context.Context, olderThan time.Duration) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var n int64
	for id, p := range r.s.photos {
		if p.Status != models.PhotoStatusProcessing || p.ClaimedAt == nil || !p.ClaimedAt.Before(cutoff) {
			continue
		}
		p.Status = models.PhotoStatusPending
		p.ClaimedBy = nil
		p.ClaimedAt = nil
		p.LastError = "claim expired"
		p.UpdatedAt = time.Now()
		r.s.photos[id] = p
		n++
	}
	return n, nil
}
