package services

import "errors"

var (
	// Registration
	ErrNoFaceDetected         = errors.New("no face detected in the image")
	ErrMultipleFacesDetected  = errors.New("more than one face detected in the image")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrValidation             = errors.New("validation failed")

	// Ingest
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file too large")

	// Lookups
	ErrGalleryNotFound = errors.New("gallery not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrBatchNotFound   = errors.New("batch not found")

	// ErrProcessingSkipped marks a photo left pending by a batch.
	ErrProcessingSkipped = errors.New("processing skipped")

	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrExtractorUnavailable = errors.New("face extraction service unavailable")
)
