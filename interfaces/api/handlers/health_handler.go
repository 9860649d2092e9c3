package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// critical components make the service unhealthy when they fail; the rest
// only degrade it.
var criticalComponents = map[string]bool{
	"database": true,
	"storage":  true,
}

type HealthHandler struct {
	checks  map[string]func(context.Context) error
	service string
}

func NewHealthHandler(checks map[string]func(context.Context) error, service string) *HealthHandler {
	return &HealthHandler{checks: checks, service: service}
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string `json:"status"` // "ok" or "error"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealthResponse represents detailed health check response
type DetailedHealthResponse struct {
	Status     string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Server is running",
		"service": h.service,
	})
}

// DetailedHealth probes every component concurrently.
func (h *HealthHandler) DetailedHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]ComponentHealth, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check func(context.Context) error) {
			defer wg.Done()
			results[i] = probe(ctx, check)
		}(i, h.checks[name])
	}
	wg.Wait()

	response := DetailedHealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth, len(names)),
	}
	for i, name := range names {
		response.Components[name] = results[i]
		if results[i].Status == "ok" {
			continue
		}
		if criticalComponents[name] {
			response.Status = "unhealthy"
		} else if response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}
	return c.Status(statusCode).JSON(response)
}

func probe(ctx context.Context, check func(context.Context) error) ComponentHealth {
	start := time.Now()
	if err := check(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: err.Error()}
	}
	return ComponentHealth{Status: "ok", Latency: time.Since(start).String()}
}
