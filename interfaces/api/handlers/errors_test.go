package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"event-gallery/domain/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
		known  bool
	}{
		{"no face", services.ErrNoFaceDetected, fiber.StatusBadRequest, noFaceDetail, true},
		{"wrapped no face", fmt.Errorf("%w: decode", services.ErrNoFaceDetected), fiber.StatusBadRequest, noFaceDetail, true},
		{"validation keeps cause", fmt.Errorf("%w: email is invalid", services.ErrValidation), fiber.StatusBadRequest, "validation failed: email is invalid", true},
		{"duplicate email", services.ErrEmailAlreadyRegistered, fiber.StatusConflict, "Email is already registered", true},
		{"media type", services.ErrUnsupportedMediaType, fiber.StatusUnsupportedMediaType, "Unsupported image type", true},
		{"too large", services.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "File too large", true},
		{"gallery", services.ErrGalleryNotFound, fiber.StatusNotFound, "Gallery not found", true},
		{"batch", services.ErrBatchNotFound, fiber.StatusNotFound, "Batch not found", true},
		{"credentials", services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials", true},
		{"extractor", services.ErrExtractorUnavailable, fiber.StatusServiceUnavailable, "Face recognition is temporarily unavailable. Please try again later.", true},
		{"unknown", errors.New("disk on fire"), fiber.StatusInternalServerError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail, ok := statusFor(tt.err)
			if status != tt.status || detail != tt.detail || ok != tt.known {
				t.Errorf("statusFor() = (%d, %q, %v), want (%d, %q, %v)", status, detail, ok, tt.status, tt.detail, tt.known)
			}
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare", "aGVsbG8=", "hello", false},
		{"data url", "data:image/png;base64,aGVsbG8=", "hello", false},
		{"unpadded", "aGVsbG8", "hello", false},
		{"garbage", "!!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeDataURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeDataURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("decodeDataURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
