package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/pkg/config"
	"event-gallery/pkg/facematch"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/metrics"
)

type MatchingServiceImpl struct {
	userRepo  repositories.UserRepository
	photoRepo repositories.PhotoRepository
	matchRepo repositories.MatchRepository
	batchRepo repositories.BatchRepository
	extractor services.FaceExtractor
	store     services.ObjectStore
	cfg       config.MatchingConfig

	mu    sync.RWMutex
	queue services.BatchQueue
}

func NewMatchingService(
	userRepo repositories.UserRepository,
	photoRepo repositories.PhotoRepository,
	matchRepo repositories.MatchRepository,
	batchRepo repositories.BatchRepository,
	extractor services.FaceExtractor,
	store services.ObjectStore,
	cfg config.MatchingConfig,
) services.MatchingService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &MatchingServiceImpl{
		userRepo:  userRepo,
		photoRepo: photoRepo,
		matchRepo: matchRepo,
		batchRepo: batchRepo,
		extractor: extractor,
		store:     store,
		cfg:       cfg,
	}
}

func (s *MatchingServiceImpl) SetQueue(queue services.BatchQueue) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

func (s *MatchingServiceImpl) getQueue() services.BatchQueue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue
}

func (s *MatchingServiceImpl) Trigger(ctx context.Context, trigger models.BatchTrigger) (*models.MatchBatch, error) {
	queued, err := s.batchRepo.GetQueued(ctx)
	if err == nil {
		logger.Match("batch_coalesced", "Trigger joined the queued batch", map[string]interface{}{
			"batch_id": queued.ID.String(),
			"trigger":  trigger,
		})
		return queued, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up queued batch: %w", err)
	}

	batch, err := s.CreateBatch(ctx, trigger)
	if err != nil {
		return nil, err
	}
	if q := s.getQueue(); q == nil || !q.EnqueueBatch(batch.ID) {
		// picked up by ResumeQueued once the worker drains
		logger.MatchWarn("batch_not_enqueued", "Batch recorded but the worker queue is unavailable", nil, map[string]interface{}{
			"batch_id": batch.ID.String(),
		})
	}
	return batch, nil
}

func (s *MatchingServiceImpl) CreateBatch(ctx context.Context, trigger models.BatchTrigger) (*models.MatchBatch, error) {
	batch := &models.MatchBatch{
		ID:       uuid.New(),
		Trigger:  trigger,
		Status:   models.BatchStatusQueued,
		QueuedAt: time.Now(),
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	logger.Match("batch_queued", "Matching batch queued", map[string]interface{}{
		"batch_id": batch.ID.String(),
		"trigger":  trigger,
	})
	return batch, nil
}

// batchCounters accumulates per-photo results from the worker goroutines.
type batchCounters struct {
	mu        sync.Mutex
	processed int
	skipped   int
	matches   int
}

func (c *batchCounters) add(outcome services.PhotoOutcome, matches int) (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch outcome {
	case services.OutcomeProcessed:
		c.processed++
		c.matches += matches
	case services.OutcomeSkipped:
		c.skipped++
	}
	return c.processed, c.skipped, c.matches
}

func (s *MatchingServiceImpl) RunBatch(ctx context.Context, batchID uuid.UUID, observer services.BatchObserver) (*models.MatchBatch, error) {
	start := time.Now()
	// bookkeeping must survive a cancelled run
	bg := context.WithoutCancel(ctx)

	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status != models.BatchStatusQueued {
		logger.Match("batch_not_queued", "Batch already started elsewhere", map[string]interface{}{
			"batch_id": batchID.String(),
			"status":   batch.Status,
		})
		return batch, nil
	}

	ids, err := s.photoRepo.ListPendingIDs(ctx, s.cfg.BatchLimit)
	if err != nil {
		return s.fail(bg, batch, fmt.Errorf("failed to list pending photos: %w", err))
	}
	if err := s.batchRepo.MarkRunning(ctx, batchID, len(ids)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// another process started it between the read and the update
			return s.GetBatch(bg, batchID)
		}
		return s.fail(bg, batch, fmt.Errorf("failed to start batch: %w", err))
	}
	now := time.Now()
	batch.Status = models.BatchStatusRunning
	batch.TotalPhotos = len(ids)
	batch.StartedAt = &now

	index, err := s.snapshotIndex(ctx)
	if err != nil {
		return s.fail(bg, batch, err)
	}

	logger.Match("batch_started", "Matching batch started", map[string]interface{}{
		"batch_id":    batchID.String(),
		"photos":      len(ids),
		"users":       index.Len(),
		"index":       s.cfg.Index,
		"concurrency": s.cfg.Concurrency,
	})
	if observer != nil {
		observer.BatchStarted(batch)
	}

	var (
		counters batchCounters
		wg       sync.WaitGroup
		sem      = make(chan struct{}, s.cfg.Concurrency)
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(photoID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome, matches := s.processPhoto(ctx, batchID, index, photoID)
			metrics.PhotosProcessed.WithLabelValues(string(outcome)).Inc()
			processed, skipped, total := counters.add(outcome, matches)
			if err := s.batchRepo.UpdateProgress(bg, batchID, processed, skipped, total); err != nil {
				logger.MatchError("batch_progress", "Failed to record batch progress", err, nil)
			}
			if observer != nil {
				observer.PhotoDone(batch, photoID, outcome, matches)
			}
		}(id)
	}
	wg.Wait()

	batch.ProcessedPhotos, batch.SkippedPhotos, batch.MatchesRecorded = counters.processed, counters.skipped, counters.matches
	// concurrent progress writes may land out of order
	if err := s.batchRepo.UpdateProgress(bg, batchID, batch.ProcessedPhotos, batch.SkippedPhotos, batch.MatchesRecorded); err != nil {
		logger.MatchError("batch_progress", "Failed to record batch progress", err, nil)
	}
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		return s.fail(bg, batch, fmt.Errorf("batch interrupted: %w", ctx.Err()))
	}

	if err := s.batchRepo.Finish(bg, batchID, models.BatchStatusCompleted, ""); err != nil {
		return nil, fmt.Errorf("failed to finish batch: %w", err)
	}
	logger.Match("batch_completed", "Matching batch completed", map[string]interface{}{
		"batch_id":  batchID.String(),
		"processed": batch.ProcessedPhotos,
		"skipped":   batch.SkippedPhotos,
		"matches":   batch.MatchesRecorded,
		"duration":  time.Since(start).String(),
	})
	return s.GetBatch(bg, batchID)
}

func (s *MatchingServiceImpl) fail(ctx context.Context, batch *models.MatchBatch, cause error) (*models.MatchBatch, error) {
	logger.MatchError("batch_failed", "Matching batch failed", cause, map[string]interface{}{
		"batch_id": batch.ID.String(),
	})
	if err := s.batchRepo.Finish(ctx, batch.ID, models.BatchStatusFailed, cause.Error()); err != nil {
		logger.MatchError("batch_finish", "Failed to record batch failure", err, nil)
	}
	batch.Status = models.BatchStatusFailed
	batch.LastError = cause.Error()
	return batch, cause
}

// snapshotIndex loads every registered descriptor into a match index.
func (s *MatchingServiceImpl) snapshotIndex(ctx context.Context) (facematch.Index, error) {
	users, err := s.userRepo.ListDescriptors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	entries := make([]facematch.Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, facematch.Entry{UserID: u.ID, Descriptor: u.Descriptor.Slice()})
	}
	index, err := facematch.NewIndex(s.cfg.Index, entries, s.cfg.HNSWNeighbors)
	if err != nil {
		return nil, err
	}
	return index, nil
}

func (s *MatchingServiceImpl) processPhoto(ctx context.Context, batchID uuid.UUID, index facematch.Index, photoID uuid.UUID) (services.PhotoOutcome, int) {
	bg := context.WithoutCancel(ctx)
	data := map[string]interface{}{
		"batch_id": batchID.String(),
		"photo_id": photoID.String(),
	}

	claimed, err := s.photoRepo.Claim(ctx, photoID, batchID)
	if err != nil {
		logger.MatchWarn("photo_skipped", "Photo could not be claimed", fmt.Errorf("%w: %v", services.ErrProcessingSkipped, err), data)
		return services.OutcomeSkipped, 0
	}
	if !claimed {
		return services.OutcomeClaimed, 0
	}

	skip := func(cause error) (services.PhotoOutcome, int) {
		if err := s.photoRepo.Release(bg, photoID, batchID, cause.Error()); err != nil {
			logger.MatchError("photo_release", "Failed to release photo claim", err, data)
		}
		logger.MatchWarn("photo_skipped", "Photo left pending for the next batch", fmt.Errorf("%w: %v", services.ErrProcessingSkipped, cause), data)
		return services.OutcomeSkipped, 0
	}

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return skip(fmt.Errorf("load photo: %w", err))
	}
	image, err := s.readObject(ctx, photo.StorageKey)
	if err != nil {
		return skip(fmt.Errorf("read file: %w", err))
	}
	detected, err := s.extractor.Extract(ctx, image, photo.ContentType)
	if err != nil {
		return skip(fmt.Errorf("extract faces: %w", err))
	}

	faces := make([]*models.PhotoFace, len(detected))
	vectors := make([][]float32, len(detected))
	for i, d := range detected {
		vectors[i] = facematch.Normalize(d.Embedding)
		faces[i] = &models.PhotoFace{
			ID:         uuid.New(),
			PhotoID:    photoID,
			Embedding:  pgvector.NewVector(vectors[i]),
			BboxX:      d.BboxX,
			BboxY:      d.BboxY,
			BboxWidth:  d.BboxWidth,
			BboxHeight: d.BboxHeight,
			Confidence: d.Confidence,
		}
	}

	candidates := facematch.BestPerUser(index, vectors, s.cfg.Threshold)
	matches := make([]models.MatchCandidate, len(candidates))
	for i, c := range candidates {
		matches[i] = models.MatchCandidate{UserID: c.UserID, FaceID: faces[c.FaceIndex].ID, Distance: c.Distance}
	}

	recorded, err := s.photoRepo.CompleteProcessing(bg, photoID, batchID, faces, matches)
	switch {
	case errors.Is(err, repositories.ErrClaimLost):
		logger.MatchWarn("photo_claim_lost", "Photo claim expired before completion", err, data)
		return services.OutcomeSkipped, 0
	case err != nil:
		return skip(fmt.Errorf("store results: %w", err))
	}

	metrics.MatchesRecorded.Add(float64(recorded))
	logger.Debug(logger.CategoryMatch, "photo_processed", "Photo processed", map[string]interface{}{
		"photo_id": photoID.String(),
		"faces":    len(faces),
		"matches":  recorded,
	})
	return services.OutcomeProcessed, recorded
}

func (s *MatchingServiceImpl) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *MatchingServiceImpl) MatchUser(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, services.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	n, err := s.matchRepo.BackfillUser(ctx, user, s.cfg.Threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill user: %w", err)
	}
	metrics.MatchesRecorded.Add(float64(n))
	logger.Match("user_backfilled", "Registrant matched against processed photos", map[string]interface{}{
		"user_id": userID.String(),
		"matches": n,
	})
	return n, nil
}

func (s *MatchingServiceImpl) ScheduleBackfill(ctx context.Context, userID uuid.UUID) {
	if q := s.getQueue(); q != nil && q.EnqueueBackfill(userID) {
		return
	}
	if _, err := s.MatchUser(context.WithoutCancel(ctx), userID); err != nil {
		logger.MatchError("user_backfill", "Registrant backfill failed", err, map[string]interface{}{
			"user_id": userID.String(),
		})
	}
}

func (s *MatchingServiceImpl) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.photoRepo.ReleaseStale(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale claims: %w", err)
	}
	if n > 0 {
		logger.MatchWarn("stale_released", "Released photos stuck in processing", nil, map[string]interface{}{
			"count":      n,
			"older_than": olderThan.String(),
		})
	}
	return n, nil
}

func (s *MatchingServiceImpl) GetBatch(ctx context.Context, batchID uuid.UUID) (*models.MatchBatch, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, services.ErrBatchNotFound
	}
	return batch, err
}

func (s *MatchingServiceImpl) ListBatches(ctx context.Context, limit int) ([]models.MatchBatch, error) {
	return s.batchRepo.List(ctx, limit)
}

func (s *MatchingServiceImpl) ResumeQueued(ctx context.Context) error {
	batch, err := s.batchRepo.GetQueued(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if q := s.getQueue(); q != nil {
		q.EnqueueBatch(batch.ID)
	}
	return nil
}

func (s *MatchingServiceImpl) RecoverInterrupted(ctx context.Context) (int64, error) {
	n, err := s.batchRepo.FailInterrupted(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.MatchWarn("batches_interrupted", "Marked interrupted batches as failed", nil, map[string]interface{}{"count": n})
	}
	return n, nil
}
