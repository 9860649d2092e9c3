package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"event-gallery/domain/services"
	"event-gallery/pkg/config"
	"event-gallery/pkg/facematch"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/metrics"
)

// ErrImageRejected means the face service answered but could not process the image.
var ErrImageRejected = errors.New("face service rejected the image")

// FaceClient communicates with the face embedding service.
type FaceClient struct {
	baseURL       string
	httpClient    *http.Client
	maxDimension  int
	minConfidence float64

	maxRetries     int
	baseRetryDelay time.Duration
	breaker        *CircuitBreaker
}

// DetectedFace is one face as returned by the service.
type DetectedFace struct {
	// Bounding box (normalized 0-1)
	BboxX      float64 `json:"bbox_x"`
	BboxY      float64 `json:"bbox_y"`
	BboxWidth  float64 `json:"bbox_width"`
	BboxHeight float64 `json:"bbox_height"`

	Embedding  []float32 `json:"embedding"`
	Confidence float64   `json:"confidence"`
}

type ExtractResponse struct {
	Success          bool           `json:"success"`
	Faces            []DetectedFace `json:"faces"`
	Error            string         `json:"error,omitempty"`
	ProcessingTimeMs int            `json:"processing_time_ms"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// statusError is a non-200 answer from the service.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("face API error (status %d): %s", e.code, e.body)
}

func NewFaceClient(cfg config.FaceAPIConfig) *FaceClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second // CPU inference can be slow
	}
	return &FaceClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		maxDimension:   cfg.MaxDimension,
		minConfidence:  cfg.MinConfidence,
		maxRetries:     3,
		baseRetryDelay: 2 * time.Second,
		breaker:        NewCircuitBreaker(10, 60*time.Second),
	}
}

// Extract implements services.FaceExtractor. Transport failures, and an open
// breaker, are reported as services.ErrExtractorUnavailable.
func (c *FaceClient) Extract(ctx context.Context, image []byte, mimeType string) ([]services.Face, error) {
	if c.breaker.IsOpen() {
		return nil, fmt.Errorf("%w: circuit open after %d failures", services.ErrExtractorUnavailable, c.breaker.Failures())
	}

	data, contentType := downscale(image, mimeType, c.maxDimension)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseRetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.ExtractFacesFromBytes(ctx, data, contentType)
		if err == nil {
			c.breaker.RecordSuccess()
			return c.toFaces(result.Faces), nil
		}
		lastErr = err

		if errors.Is(err, ErrImageRejected) {
			// the service is healthy, the image is not
			c.breaker.RecordSuccess()
			return nil, err
		}
		if !isRetryableError(err) || ctx.Err() != nil {
			break
		}
		logger.FaceError("extract_retry", "Face extraction attempt failed", err, map[string]interface{}{
			"attempt": attempt + 1,
		})
	}

	c.breaker.RecordFailure()
	return nil, fmt.Errorf("%w: %v", services.ErrExtractorUnavailable, lastErr)
}

func (c *FaceClient) toFaces(detected []DetectedFace) []services.Face {
	faces := make([]services.Face, 0, len(detected))
	for _, d := range detected {
		if d.Confidence < c.minConfidence || len(d.Embedding) == 0 {
			continue
		}
		faces = append(faces, services.Face{
			BboxX:      d.BboxX,
			BboxY:      d.BboxY,
			BboxWidth:  d.BboxWidth,
			BboxHeight: d.BboxHeight,
			Confidence: d.Confidence,
			Embedding:  facematch.Normalize(d.Embedding),
		})
	}
	return faces
}

// ExtractFacesFromBytes makes a single call to /extract-bytes.
func (c *FaceClient) ExtractFacesFromBytes(ctx context.Context, imageData []byte, mimeType string) (*ExtractResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract-bytes", bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.FaceAPIRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to call face API: %w", err)
	}
	defer resp.Body.Close()
	metrics.FaceAPIRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var result ExtractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrImageRejected, result.Error)
	}
	return &result, nil
}

// isRetryableError reports whether another attempt may succeed.
func isRetryableError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		switch se.code {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	for _, pattern := range []string{"connection refused", "connection reset", "temporary failure", "EOF"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func (c *FaceClient) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call health API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func (c *FaceClient) IsAvailable(ctx context.Context) bool {
	health, err := c.Health(ctx)
	if err != nil {
		return false
	}
	return health.Status == "ok"
}
