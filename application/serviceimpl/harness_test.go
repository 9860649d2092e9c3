package serviceimpl

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
	"event-gallery/infrastructure/memory"
	"event-gallery/infrastructure/storage"
	"event-gallery/pkg/config"
	"event-gallery/pkg/facematch"
)

// fakeExtractor returns the faces registered for exact image bytes.
type fakeExtractor struct {
	mu    sync.Mutex
	faces map[string][]services.Face
	err   error
	calls int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{faces: make(map[string][]services.Face)}
}

func (f *fakeExtractor) set(img []byte, descriptors ...[]float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	faces := make([]services.Face, len(descriptors))
	for i, d := range descriptors {
		faces[i] = services.Face{BboxWidth: 0.2, BboxHeight: 0.2, Confidence: 0.99, Embedding: facematch.Normalize(d)}
	}
	f.faces[string(img)] = faces
}

func (f *fakeExtractor) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeExtractor) Extract(_ context.Context, img []byte, _ string) ([]services.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.faces[string(img)], nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type harness struct {
	store        *memory.Store
	extractor    *fakeExtractor
	cache        *fakeCache
	matching     services.MatchingService
	registration services.RegistrationService
	ingest       services.IngestService
	gallery      services.GalleryService
	admin        services.AdminService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	h := &harness{
		store:     memory.NewStore(),
		extractor: newFakeExtractor(),
		cache:     newFakeCache(),
	}
	h.matching = NewMatchingService(
		h.store.Users(), h.store.Photos(), h.store.Matches(), h.store.Batches(),
		h.extractor, files,
		config.MatchingConfig{Threshold: 0.45, Index: "exact", HNSWNeighbors: 8, Concurrency: 3, BatchLimit: 500},
	)
	h.registration = NewRegistrationService(h.store.Users(), h.extractor, h.matching, files, h.cache, false)
	h.ingest = NewIngestService(h.store.Photos(), files, 1<<20)
	h.gallery = NewGalleryService(h.store.Users(), h.store.Matches(), files, h.cache, "https://photos.example.com", 128, time.Hour)
	h.admin = NewAdminService(h.store.Users(), h.store.Photos(), h.store.Stats(), h.registration, h.ingest, h.matching)
	return h
}

// testImage renders a distinct tiny PNG for seed.
func testImage(t *testing.T, seed int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(seed), G: uint8(seed >> 8), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func axis(i, dim int) []float32 {
	v := make([]float32, dim)
	v[i] = 1
	return v
}

// near returns a vector a few degrees away from axis i.
func near(i, dim int) []float32 {
	v := axis(i, dim)
	v[(i+1)%dim] = 0.1
	return v
}

func (h *harness) register(t *testing.T, name, email string, seed int, descriptor []float32) string {
	t.Helper()
	img := testImage(t, seed)
	h.extractor.set(img, descriptor)
	user, err := h.registration.Register(context.Background(), services.RegisterInput{
		Name: name, Email: email, Phone: "0812345678", FaceImage: img,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user.GalleryID
}

func (h *harness) upload(t *testing.T, seed int, descriptors ...[]float32) string {
	t.Helper()
	img := testImage(t, seed)
	h.extractor.set(img, descriptors...)
	res, err := h.ingest.Ingest(context.Background(), []services.UploadFile{{Filename: "event.png", Data: img}})
	if err != nil || res.Stored != 1 {
		t.Fatalf("ingest seed %d: %v %+v", seed, err, res)
	}
	return res.Photos[0].Filename
}

func (h *harness) process(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	batch, err := h.matching.CreateBatch(ctx, models.BatchTriggerCLI)
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := h.matching.RunBatch(ctx, batch.ID, nil); err != nil {
		t.Fatalf("run batch: %v", err)
	}
}
