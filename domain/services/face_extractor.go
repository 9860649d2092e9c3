package services

import "context"

// Face is one face found by the extractor. Embedding is unit length and the
// bounding box is normalized to 0..1.
type Face struct {
	BboxX      float64
	BboxY      float64
	BboxWidth  float64
	BboxHeight float64
	Confidence float64
	Embedding  []float32
}

// FaceExtractor turns image bytes into face descriptors.
type FaceExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) ([]Face, error)
}
