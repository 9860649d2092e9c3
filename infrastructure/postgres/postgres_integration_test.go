//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "gallery",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=gallery sslmode=disable", host, port.Port())
	db, err := Open(dsn, "silent")
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func axisVector(i, dim int) pgvector.Vector {
	v := make([]float32, dim)
	v[i%dim] = 1
	return pgvector.NewVector(v)
}

func createUser(t *testing.T, repo repositories.UserRepository, email string, axis int) *models.User {
	t.Helper()
	u := &models.User{
		GalleryID:  models.NewGalleryID(),
		Name:       "User " + email,
		Email:      email,
		Phone:      "555",
		Descriptor: axisVector(axis, 4),
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createPhoto(t *testing.T, repo repositories.PhotoRepository, name string) *models.Photo {
	t.Helper()
	id := uuid.New()
	p := &models.Photo{
		ID:         id,
		Filename:   id.String() + ".jpg",
		StorageKey: "originals/" + id.String() + ".jpg",
		UploadedAt: time.Now(),
		Status:     models.PhotoStatusPending,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create photo %s: %v", name, err)
	}
	return p
}

func TestPhotoClaimLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	photos := NewPhotoRepository(db)
	stats := NewStatsRepository(db)

	ada := createUser(t, users, "ada@example.com", 0)
	photo := createPhoto(t, photos, "group")

	t.Run("only one concurrent claim wins", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := photos.Claim(ctx, photo.ID, uuid.New())
				if err != nil {
					t.Errorf("claim: %v", err)
					return
				}
				if ok {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if winners != 1 {
			t.Fatalf("winners = %d, want 1", winners)
		}
	})

	got, _ := photos.GetByID(ctx, photo.ID)
	owner := *got.ClaimedBy

	t.Run("completion by another batch loses", func(t *testing.T) {
		_, err := photos.CompleteProcessing(ctx, photo.ID, uuid.New(), nil, nil)
		if !errors.Is(err, repositories.ErrClaimLost) {
			t.Errorf("err = %v, want ErrClaimLost", err)
		}
	})

	t.Run("owner completes with one match per user", func(t *testing.T) {
		faceA := &models.PhotoFace{ID: uuid.New(), PhotoID: photo.ID, Embedding: axisVector(0, 4), Confidence: 0.9}
		faceB := &models.PhotoFace{ID: uuid.New(), PhotoID: photo.ID, Embedding: axisVector(1, 4), Confidence: 0.9}
		n, err := photos.CompleteProcessing(ctx, photo.ID, owner,
			[]*models.PhotoFace{faceA, faceB},
			[]models.MatchCandidate{
				{UserID: ada.ID, FaceID: faceA.ID, Distance: 0.1},
				{UserID: ada.ID, FaceID: faceB.ID, Distance: 0.3},
				{UserID: uuid.New(), FaceID: faceB.ID, Distance: 0.2}, // deleted user
			})
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("rows written = %d, want 2", n)
		}

		var m models.Match
		if err := db.Where("user_id = ? AND photo_id = ?", ada.ID, photo.ID).First(&m).Error; err != nil {
			t.Fatal(err)
		}
		if m.Distance != 0.1 || m.FaceID == nil || *m.FaceID != faceA.ID {
			t.Errorf("kept match %+v, want closest face", m)
		}
	})

	t.Run("processed never reverts", func(t *testing.T) {
		ok, err := photos.Claim(ctx, photo.ID, uuid.New())
		if err != nil || ok {
			t.Errorf("claim processed photo = %v, %v", ok, err)
		}
		if n, _ := photos.ReleaseStale(ctx, -time.Hour); n != 0 {
			t.Errorf("released %d processed photos", n)
		}
	})

	t.Run("stats snapshot", func(t *testing.T) {
		createPhoto(t, photos, "pending")
		s, err := stats.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalUsers != 1 || s.TotalImages != 2 || s.ProcessedImages != 1 || s.PendingImages != 1 || s.TotalMatches != 1 {
			t.Errorf("stats = %+v", s)
		}
		if s.TotalImages != s.ProcessedImages+s.PendingImages {
			t.Errorf("totals do not add up: %+v", s)
		}
	})
}

func TestReleaseAndReap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	photos := NewPhotoRepository(db)

	p := createPhoto(t, photos, "flaky")
	batch := uuid.New()
	if ok, _ := photos.Claim(ctx, p.ID, batch); !ok {
		t.Fatal("claim failed")
	}

	// only the owner may release
	if err := photos.Release(ctx, p.ID, uuid.New(), "not mine"); err != nil {
		t.Fatal(err)
	}
	got, _ := photos.GetByID(ctx, p.ID)
	if got.Status != models.PhotoStatusProcessing {
		t.Fatalf("status = %s after foreign release", got.Status)
	}

	if err := photos.Release(ctx, p.ID, batch, "extractor timeout"); err != nil {
		t.Fatal(err)
	}
	got, _ = photos.GetByID(ctx, p.ID)
	if got.Status != models.PhotoStatusPending || got.Attempts != 1 || got.LastError != "extractor timeout" {
		t.Errorf("after release: %+v", got)
	}

	if ok, _ := photos.Claim(ctx, p.ID, uuid.New()); !ok {
		t.Fatal("reclaim failed")
	}
	n, err := photos.ReleaseStale(ctx, -time.Minute)
	if err != nil || n != 1 {
		t.Fatalf("ReleaseStale = %d, %v", n, err)
	}
	got, _ = photos.GetByID(ctx, p.ID)
	if got.Status != models.PhotoStatusPending || got.LastError != "claim expired" {
		t.Errorf("after reap: %+v", got)
	}
}

func TestBackfillAndCascadeDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	photos := NewPhotoRepository(db)
	matches := NewMatchRepository(db)

	p := createPhoto(t, photos, "early")
	batch := uuid.New()
	if ok, _ := photos.Claim(ctx, p.ID, batch); !ok {
		t.Fatal("claim failed")
	}
	face := &models.PhotoFace{ID: uuid.New(), PhotoID: p.ID, Embedding: axisVector(2, 4), Confidence: 0.9}
	if _, err := photos.CompleteProcessing(ctx, p.ID, batch, []*models.PhotoFace{face}, nil); err != nil {
		t.Fatal(err)
	}

	late := createUser(t, users, "late@example.com", 2)
	other := createUser(t, users, "other@example.com", 3)

	n, err := matches.BackfillUser(ctx, late, 0.45)
	if err != nil || n != 1 {
		t.Fatalf("backfill late = %d, %v", n, err)
	}
	if n, _ := matches.BackfillUser(ctx, other, 0.45); n != 0 {
		t.Errorf("backfill other = %d, want 0", n)
	}
	// repeat is idempotent
	if _, err := matches.BackfillUser(ctx, late, 0.45); err != nil {
		t.Fatal(err)
	}

	gallery, err := matches.ListGallery(ctx, late.ID)
	if err != nil || len(gallery) != 1 || gallery[0].ID != p.ID {
		t.Fatalf("gallery = %+v, %v", gallery, err)
	}

	orphans, err := users.DeleteCascade(ctx, late.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(orphans) != 1 || orphans[0].ID != p.ID {
		t.Errorf("orphans = %+v, want the early photo", orphans)
	}
	if _, err := users.GetByGalleryID(ctx, late.GalleryID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("gallery lookup after delete: %v", err)
	}
	var count int64
	db.Model(&models.Match{}).Where("user_id = ?", late.ID).Count(&count)
	if count != 0 {
		t.Errorf("%d matches survived the delete", count)
	}
}
