package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

type batchRepo struct{ s *Store }

func (r *batchRepo) Create(_ context.Context, batch *models.MatchBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.Status == "" {
		batch.Status = models.BatchStatusQueued
	}
	if batch.QueuedAt.IsZero() {
		batch.QueuedAt = time.Now()
	}
	r.s.batches[batch.ID] = *batch
	return nil
}

func (r *batchRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MatchBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &b, nil
}

func (r *batchRepo) GetQueued(_ context.Context) (*models.MatchBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var oldest *models.MatchBatch
	for _, b := range r.s.batches {
		if b.Status != models.BatchStatusQueued {
			continue
		}
		if oldest == nil || b.QueuedAt.Before(oldest.QueuedAt) {
			b := b
			oldest = &b
		}
	}
	if oldest == nil {
		return nil, repositories.ErrNotFound
	}
	return oldest, nil
}

func (r *batchRepo) List(_ context.Context, limit int) ([]models.MatchBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.MatchBatch, 0, len(r.s.batches))
	for _, b := range r.s.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuedAt.After(out[j].QueuedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *batchRepo) update(id uuid.UUID, fn func(*models.MatchBatch) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok || !fn(&b) {
		return repositories.ErrNotFound
	}
	r.s.batches[id] = b
	return nil
}

func (r *batchRepo) MarkRunning(_ context.Context, id uuid.UUID, total int) error {
	return r.update(id, func(b *models.MatchBatch) bool {
		if b.Status != models.BatchStatusQueued {
			return false
		}
		now := time.Now()
		b.Status = models.BatchStatusRunning
		b.TotalPhotos = total
		b.StartedAt = &now
		return true
	})
}

func (r *batchRepo) UpdateProgress(_ context.Context, id uuid.UUID, processed, skipped, matches int) error {
	return r.update(id, func(b *models.MatchBatch) bool {
		b.ProcessedPhotos = processed
		b.SkippedPhotos = skipped
		b.MatchesRecorded = matches
		return true
	})
}

func (r *batchRepo) Finish(_ context.Context, id uuid.UUID, status models.BatchStatus, lastError string) error {
	return r.update(id, func(b *models.MatchBatch) bool {
		now := time.Now()
		b.Status = status
		b.LastError = lastError
		b.CompletedAt = &now
		return true
	})
}

func (r *batchRepo) FailInterrupted(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	now := time.Now()
	for id, b := range r.s.batches {
		if b.Status != models.BatchStatusRunning {
			continue
		}
		b.Status = models.BatchStatusFailed
		b.LastError = "interrupted by restart"
		b.CompletedAt = &now
		r.s.batches[id] = b
		n++
	}
	return n, nil
}
