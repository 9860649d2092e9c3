package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"event-gallery/pkg/config"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

// RateLimiter returns a general rate limiting middleware
func RateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.MaxRequests, cfg.WindowSeconds,
		"Too many requests. Please try again later.")
}

// AuthRateLimiter returns a stricter rate limiting middleware for the login endpoint
func AuthRateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.AuthMaxRequests, cfg.AuthWindowSeconds,
		"Too many authentication attempts. Please try again later.")
}

func newLimiter(enabled bool, max, windowSeconds int, detail string) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Duration(windowSeconds) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn(logger.CategoryAPI, "rate_limited", "Rate limit reached", map[string]interface{}{
				"ip":   c.IP(),
				"path": c.Path(),
			})
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, detail, nil)
		},
	})
}
