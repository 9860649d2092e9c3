package serviceimpl

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
)

const dim = 8

func TestProcessingBuildsGalleries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	galleryA := h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	h.upload(t, 100, near(0, dim))
	h.upload(t, 101, near(0, dim), axis(4, dim))
	h.upload(t, 102)
	h.process(t)

	stats, err := h.admin.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ProcessedImages != 3 || stats.PendingImages != 0 || stats.TotalMatches != 2 {
		t.Errorf("stats = %+v", stats)
	}

	gallery, err := h.gallery.Resolve(ctx, galleryA)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gallery.UserName != "Alice" || len(gallery.Images) != 2 {
		t.Fatalf("gallery = %+v", gallery)
	}
	for _, img := range gallery.Images {
		if want := "/api/image/" + galleryA + "/" + img.Filename; img.URL != want {
			t.Errorf("url = %q, want %q", img.URL, want)
		}
	}
}

func TestPhotoWithTwoUsersAppearsInBothGalleries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	galleryA := h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	galleryB := h.register(t, "Bob", "bob@example.com", 2, axis(2, dim))
	filename := h.upload(t, 100, near(2, dim), near(0, dim))
	h.process(t)

	for _, id := range []string{galleryA, galleryB} {
		gallery, err := h.gallery.Resolve(ctx, id)
		if err != nil {
			t.Fatalf("resolve %s: %v", id, err)
		}
		if len(gallery.Images) != 1 || gallery.Images[0].Filename != filename {
			t.Errorf("gallery %s = %+v", id, gallery.Images)
		}
	}
}

func TestProcessingIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	h.upload(t, 100, near(0, dim))
	h.upload(t, 101, near(0, dim))
	h.process(t)
	first := h.store.AllMatches()

	batch, err := h.matching.CreateBatch(ctx, models.BatchTriggerCLI)
	if err != nil {
		t.Fatal(err)
	}
	done, err := h.matching.RunBatch(ctx, batch.ID, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if done.TotalPhotos != 0 || done.Status != models.BatchStatusCompleted {
		t.Errorf("second batch = %+v", done)
	}

	second := h.store.AllMatches()
	if len(first) != len(second) {
		t.Fatalf("matches changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i].UserID != second[i].UserID || first[i].PhotoID != second[i].PhotoID || first[i].Distance != second[i].Distance {
			t.Errorf("match %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
}

func TestConcurrentBatchesClaimEachPhotoOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	h.register(t, "Bob", "bob@example.com", 2, axis(2, dim))
	const photos = 20
	for i := 0; i < photos; i++ {
		h.upload(t, 100+i, near(0, dim), near(2, dim))
	}
	callsBefore := h.extractor.callCount()

	var wg sync.WaitGroup
	results := make([]*models.MatchBatch, 4)
	for i := range results {
		batch, err := h.matching.CreateBatch(ctx, models.BatchTriggerAdmin)
		if err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			res, err := h.matching.RunBatch(ctx, id, nil)
			if err != nil {
				t.Errorf("batch %d: %v", i, err)
			}
			results[i] = res
		}(i, batch.ID)
	}
	wg.Wait()

	processed := 0
	for _, r := range results {
		if r != nil {
			processed += r.ProcessedPhotos
		}
	}
	if processed != photos {
		t.Errorf("processed across batches = %d, want %d", processed, photos)
	}
	if calls := h.extractor.callCount() - callsBefore; calls != photos {
		t.Errorf("extractor calls = %d, want %d", calls, photos)
	}

	seen := make(map[[2]uuid.UUID]bool)
	for _, m := range h.store.AllMatches() {
		k := [2]uuid.UUID{m.UserID, m.PhotoID}
		if seen[k] {
			t.Fatalf("duplicate match %v", k)
		}
		seen[k] = true
	}
	if len(seen) != 2*photos {
		t.Errorf("matches = %d, want %d", len(seen), 2*photos)
	}
}

func TestExtractionFailureLeavesPhotoPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	h.upload(t, 100, near(0, dim))

	h.extractor.fail(errors.New("face service down"))
	batch, _ := h.matching.CreateBatch(ctx, models.BatchTriggerScheduler)
	done, err := h.matching.RunBatch(ctx, batch.ID, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if done.SkippedPhotos != 1 || done.ProcessedPhotos != 0 {
		t.Errorf("batch = %+v", done)
	}

	summaries, _ := h.admin.ListImages(ctx)
	if len(summaries) != 1 {
		t.Fatalf("images = %d", len(summaries))
	}
	p := summaries[0].Photo
	if p.Status != models.PhotoStatusPending || p.Attempts != 1 || p.LastError == "" {
		t.Errorf("photo after failure = status %s attempts %d error %q", p.Status, p.Attempts, p.LastError)
	}

	h.extractor.fail(nil)
	h.process(t)
	stats, _ := h.admin.Stats(ctx)
	if stats.ProcessedImages != 1 || stats.TotalMatches != 1 {
		t.Errorf("stats after retry = %+v", stats)
	}
}

func TestRegistrationBackfillsProcessedPhotos(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.upload(t, 100, near(0, dim))
	h.upload(t, 101, axis(5, dim))
	h.process(t)

	galleryA := h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	gallery, err := h.gallery.Resolve(ctx, galleryA)
	if err != nil {
		t.Fatal(err)
	}
	if len(gallery.Images) != 1 {
		t.Errorf("backfilled images = %d, want 1", len(gallery.Images))
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	started  int
	outcomes map[services.PhotoOutcome]int
}

func (o *recordingObserver) BatchStarted(*models.MatchBatch) {
	o.mu.Lock()
	o.started++
	o.mu.Unlock()
}

func (o *recordingObserver) PhotoDone(_ *models.MatchBatch, _ uuid.UUID, outcome services.PhotoOutcome, _ int) {
	o.mu.Lock()
	o.outcomes[outcome]++
	o.mu.Unlock()
}

func TestRunBatchReportsProgress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.upload(t, 100)
	h.upload(t, 101)

	obs := &recordingObserver{outcomes: make(map[services.PhotoOutcome]int)}
	batch, _ := h.matching.CreateBatch(ctx, models.BatchTriggerAdmin)
	done, err := h.matching.RunBatch(ctx, batch.ID, obs)
	if err != nil {
		t.Fatal(err)
	}
	if obs.started != 1 || obs.outcomes[services.OutcomeProcessed] != 2 {
		t.Errorf("observer = %+v", obs)
	}
	if done.TotalPhotos != 2 || done.ProcessedPhotos != 2 || done.StartedAt == nil || done.CompletedAt == nil {
		t.Errorf("batch = %+v", done)
	}

	// a finished batch is not run again
	again, err := h.matching.RunBatch(ctx, batch.ID, obs)
	if err != nil || again.Status != models.BatchStatusCompleted || obs.started != 1 {
		t.Errorf("rerun = %+v, %v", again, err)
	}
}

func TestTriggerCoalescesQueuedBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.matching.Trigger(ctx, models.BatchTriggerAdmin)
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.matching.Trigger(ctx, models.BatchTriggerScheduler)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("trigger created a second queued batch")
	}

	if _, err := h.matching.GetBatch(ctx, uuid.New()); !errors.Is(err, services.ErrBatchNotFound) {
		t.Errorf("unknown batch err = %v", err)
	}
}

func TestRecoverInterruptedFailsRunningBatches(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	batch, _ := h.matching.CreateBatch(ctx, models.BatchTriggerAdmin)
	if err := h.store.Batches().MarkRunning(ctx, batch.ID, 0); err != nil {
		t.Fatal(err)
	}
	n, err := h.matching.RecoverInterrupted(ctx)
	if err != nil || n != 1 {
		t.Fatalf("recover = %d, %v", n, err)
	}
	got, _ := h.matching.GetBatch(ctx, batch.ID)
	if got.Status != models.BatchStatusFailed {
		t.Errorf("status = %s", got.Status)
	}
}
