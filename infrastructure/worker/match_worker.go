package worker

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
	"event-gallery/pkg/logger"
)

// Broadcaster pushes events to connected admin clients.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

const (
	EventBatchStarted   = "batch:started"
	EventPhotoProcessed = "photo:processed"
	EventBatchCompleted = "batch:completed"
	EventBatchFailed    = "batch:failed"
	EventUserBackfilled = "user:backfilled"
)

type jobKind int

const (
	jobBatch jobKind = iota
	jobBackfill
)

type job struct {
	kind jobKind
	id   uuid.UUID
}

// MatchWorker runs matching batches and registrant backfills one at a time
// off the request path.
type MatchWorker struct {
	matching services.MatchingService
	events   Broadcaster

	jobs chan job

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex

	pollInterval time.Duration
}

// NewMatchWorker creates the worker and registers it as the matching queue.
// events may be nil.
func NewMatchWorker(matching services.MatchingService, events Broadcaster, queueSize int, pollInterval time.Duration) *MatchWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	w := &MatchWorker{
		matching:     matching,
		events:       events,
		jobs:         make(chan job, queueSize),
		pollInterval: pollInterval,
	}
	matching.SetQueue(w)
	return w
}

func (w *MatchWorker) EnqueueBatch(batchID uuid.UUID) bool {
	return w.enqueue(job{kind: jobBatch, id: batchID})
}

func (w *MatchWorker) EnqueueBackfill(userID uuid.UUID) bool {
	return w.enqueue(job{kind: jobBackfill, id: userID})
}

func (w *MatchWorker) enqueue(j job) bool {
	select {
	case w.jobs <- j:
		return true
	default:
		logger.MatchWarn("queue_full", "Match worker queue is full", nil, map[string]interface{}{
			"id": j.id.String(),
		})
		return false
	}
}

// Start starts the worker loop
func (w *MatchWorker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()

	logger.Match("worker_started", "Match worker started", map[string]interface{}{"queue_size": cap(w.jobs)})
}

// Stop cancels the running batch and waits for the loop to exit. Photos not
// yet claimed stay pending.
func (w *MatchWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	logger.Match("worker_stopped", "Match worker stopped", nil)
}

func (w *MatchWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *MatchWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case j := <-w.jobs:
			w.handle(j)
			w.resumeIfIdle()
		case <-ticker.C:
			w.resumeIfIdle()
		}
	}
}

// resumeIfIdle picks up batches that were recorded while the queue was full.
func (w *MatchWorker) resumeIfIdle() {
	if len(w.jobs) > 0 || w.ctx.Err() != nil {
		return
	}
	if err := w.matching.ResumeQueued(w.ctx); err != nil {
		logger.MatchError("resume_queued", "Failed to resume queued batches", err, nil)
	}
}

func (w *MatchWorker) handle(j job) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			logger.Error(logger.CategoryMatch, "worker_panic", "Match job panicked", nil, map[string]interface{}{
				"id":    j.id.String(),
				"panic": r,
			})
		}
	}()

	switch j.kind {
	case jobBatch:
		w.runBatch(j.id)
	case jobBackfill:
		w.runBackfill(j.id)
	}
}

func (w *MatchWorker) runBatch(batchID uuid.UUID) {
	batch, err := w.matching.RunBatch(w.ctx, batchID, w)
	if err != nil {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("batch_id", batchID.String())
			sentry.CaptureException(err)
		})
		w.broadcast(EventBatchFailed, map[string]interface{}{
			"batch_id": batchID.String(),
			"error":    err.Error(),
		})
		return
	}
	if batch != nil && batch.IsFinished() {
		w.broadcast(EventBatchCompleted, batch)
	}
}

func (w *MatchWorker) runBackfill(userID uuid.UUID) {
	n, err := w.matching.MatchUser(w.ctx, userID)
	if err != nil {
		logger.MatchError("user_backfill", "Registrant backfill failed", err, map[string]interface{}{
			"user_id": userID.String(),
		})
		return
	}
	w.broadcast(EventUserBackfilled, map[string]interface{}{
		"user_id": userID.String(),
		"matches": n,
	})
}

func (w *MatchWorker) BatchStarted(batch *models.MatchBatch) {
	w.broadcast(EventBatchStarted, batch)
}

func (w *MatchWorker) PhotoDone(batch *models.MatchBatch, photoID uuid.UUID, outcome services.PhotoOutcome, matches int) {
	w.broadcast(EventPhotoProcessed, map[string]interface{}{
		"batch_id": batch.ID.String(),
		"photo_id": photoID.String(),
		"outcome":  outcome,
		"matches":  matches,
	})
}

func (w *MatchWorker) broadcast(event string, data interface{}) {
	if w.events != nil {
		w.events.Broadcast(event, data)
	}
}
