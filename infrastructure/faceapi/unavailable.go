package faceapi

import (
	"context"

	"event-gallery/domain/services"
)

// Unavailable stands in for the face service when it is disabled.
type Unavailable struct{}

func (Unavailable) Extract(context.Context, []byte, string) ([]services.Face, error) {
	return nil, services.ErrExtractorUnavailable
}
