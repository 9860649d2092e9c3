package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"event-gallery/interfaces/api/handlers"
	"event-gallery/interfaces/api/middleware"
	"event-gallery/interfaces/api/routes"
	"event-gallery/pkg/config"
	"event-gallery/pkg/di"
	"event-gallery/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Dir, cfg.Log.Console, cfg.Log.Level); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	logger.Startup("logger_init", "Logger initialized", map[string]interface{}{"dir": cfg.Log.Dir})

	sentryEnabled := initSentry(cfg)

	container := di.NewContainer().WithConfig(cfg)
	if err := container.Initialize(); err != nil {
		logger.StartupError("container_init_failed", "Failed to initialize container", err, nil)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	if sentryEnabled {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.AccessLogger())
	app.Use(middleware.CORS(cfg))

	h := handlers.NewHandlers(container.GetHandlerServices(), cfg)
	routes.SetupRoutes(app, h, cfg, container.WebSocketManager)

	setupGracefulShutdown(app, container, sentryEnabled)

	port := cfg.App.Port
	logger.Startup("server_starting", "Server starting", map[string]interface{}{
		"port":        port,
		"environment": cfg.App.Env,
		"health":      fmt.Sprintf("http://localhost:%s/health", port),
		"api":         fmt.Sprintf("http://localhost:%s/api", port),
		"websocket":   fmt.Sprintf("ws://localhost:%s/ws", port),
	})

	if err := app.Listen(":" + port); err != nil {
		logger.StartupError("server_failed", "Server failed to start", err, nil)
		os.Exit(1)
	}
}

func initSentry(cfg *config.Config) bool {
	if cfg.Sentry.DSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Environment:      cfg.App.Env,
	})
	if err != nil {
		logger.StartupError("sentry_init_failed", "Sentry init failed", err, nil)
		return false
	}
	logger.Startup("sentry_enabled", "Sentry error reporting enabled", nil)
	return true
}

func setupGracefulShutdown(app *fiber.App, container *di.Container, sentryEnabled bool) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Startup("shutdown_started", "Gracefully shutting down", nil)

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.StartupError("http_shutdown_failed", "Error stopping HTTP server", err, nil)
		}
		if err := container.Cleanup(); err != nil {
			logger.StartupError("cleanup_failed", "Error during cleanup", err, nil)
		}
		if sentryEnabled {
			sentry.Flush(2 * time.Second)
		}

		logger.Startup("shutdown_complete", "Shutdown complete", nil)
		os.Exit(0)
	}()
}
