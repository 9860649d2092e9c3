package serviceimpl

import (
	"context"
	"errors"
	"testing"

	"event-gallery/domain/services"
)

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name    string
		input   func(h *harness) services.RegisterInput
		wantErr error
	}{
		{
			name: "no face",
			input: func(h *harness) services.RegisterInput {
				img := testImage(t, 10)
				h.extractor.set(img)
				return services.RegisterInput{Name: "Ann", Email: "ann@example.com", Phone: "0812", FaceImage: img}
			},
			wantErr: services.ErrNoFaceDetected,
		},
		{
			name: "two faces",
			input: func(h *harness) services.RegisterInput {
				img := testImage(t, 11)
				h.extractor.set(img, axis(0, dim), axis(1, dim))
				return services.RegisterInput{Name: "Ann", Email: "ann@example.com", Phone: "0812", FaceImage: img}
			},
			wantErr: services.ErrMultipleFacesDetected,
		},
		{
			name: "not an image",
			input: func(h *harness) services.RegisterInput {
				return services.RegisterInput{Name: "Ann", Email: "ann@example.com", Phone: "0812", FaceImage: []byte("plain text, not a photo")}
			},
			wantErr: services.ErrUnsupportedMediaType,
		},
		{
			name: "bad email",
			input: func(h *harness) services.RegisterInput {
				return services.RegisterInput{Name: "Ann", Email: "not-an-email", Phone: "0812", FaceImage: testImage(t, 12)}
			},
			wantErr: services.ErrValidation,
		},
		{
			name: "missing name",
			input: func(h *harness) services.RegisterInput {
				return services.RegisterInput{Name: "   ", Email: "ann@example.com", Phone: "0812", FaceImage: testImage(t, 13)}
			},
			wantErr: services.ErrValidation,
		},
		{
			name: "missing image",
			input: func(h *harness) services.RegisterInput {
				return services.RegisterInput{Name: "Ann", Email: "ann@example.com", Phone: "0812"}
			},
			wantErr: services.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			user, err := h.registration.Register(context.Background(), tt.input(h))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if user != nil {
				t.Errorf("user returned on failure: %+v", user)
			}
			users, _ := h.admin.ListUsers(context.Background(), "")
			if len(users) != 0 {
				t.Errorf("users stored after failure: %d", len(users))
			}
		})
	}
}

func TestRegisterNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	img := testImage(t, 1)
	h.extractor.set(img, axis(0, dim))
	user, err := h.registration.Register(ctx, services.RegisterInput{
		Name: "  Alice   Smith ", Email: " Alice@Example.COM ", Phone: " 0812345678 ", FaceImage: img,
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "Alice Smith" || user.Email != "alice@example.com" || user.Phone != "0812345678" {
		t.Errorf("stored user = %q %q %q", user.Name, user.Email, user.Phone)
	}
	if len(user.GalleryID) != 32 {
		t.Errorf("gallery id = %q", user.GalleryID)
	}

	_, err = h.registration.Register(ctx, services.RegisterInput{
		Name: "Other", Email: "ALICE@example.com", Phone: "0899", FaceImage: img,
	})
	if !errors.Is(err, services.ErrEmailAlreadyRegistered) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestExtractorOutageIsNotANoFaceError(t *testing.T) {
	h := newHarness(t)
	h.extractor.fail(services.ErrExtractorUnavailable)

	_, err := h.registration.Register(context.Background(), services.RegisterInput{
		Name: "Ann", Email: "ann@example.com", Phone: "0812", FaceImage: testImage(t, 1),
	})
	if !errors.Is(err, services.ErrExtractorUnavailable) || errors.Is(err, services.ErrNoFaceDetected) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteUserRemovesGallery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	galleryA := h.register(t, "Alice", "alice@example.com", 1, axis(0, dim))
	galleryB := h.register(t, "Bob", "bob@example.com", 2, axis(2, dim))
	h.upload(t, 100, near(0, dim), near(2, dim))
	h.process(t)

	if _, err := h.gallery.QRCode(ctx, galleryA); err != nil {
		t.Fatal(err)
	}
	if !h.cache.has(qrCacheKey(galleryA)) {
		t.Fatal("qr code not cached")
	}

	users, _ := h.admin.ListUsers(ctx, "alice")
	if len(users) != 1 {
		t.Fatalf("users matching alice = %d", len(users))
	}
	if err := h.admin.DeleteUser(ctx, users[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := h.gallery.Resolve(ctx, galleryA); !errors.Is(err, services.ErrGalleryNotFound) {
		t.Errorf("resolve after delete err = %v", err)
	}
	if _, err := h.gallery.QRCode(ctx, galleryA); !errors.Is(err, services.ErrGalleryNotFound) {
		t.Errorf("qr after delete err = %v", err)
	}
	for _, m := range h.store.AllMatches() {
		if m.UserID == users[0].ID {
			t.Errorf("match left for deleted user: %+v", m)
		}
	}

	gallery, err := h.gallery.Resolve(ctx, galleryB)
	if err != nil || len(gallery.Images) != 1 {
		t.Errorf("other gallery = %+v, %v", gallery, err)
	}

	if err := h.admin.DeleteUser(ctx, users[0].ID); !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
