package handlers

import (
	"context"

	"event-gallery/domain/services"
	"event-gallery/pkg/config"
)

// Services contains all the services needed for handlers
type Services struct {
	RegistrationService services.RegistrationService
	IngestService       services.IngestService
	GalleryService      services.GalleryService
	AdminService        services.AdminService
	AuthService         services.AuthService

	// HealthChecks maps a component name to its probe.
	HealthChecks map[string]func(context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Registration *RegistrationHandler
	Gallery      *GalleryHandler
	Admin        *AdminHandler
	Auth         *AuthHandler
	Health       *HealthHandler
	Log          *LogHandler
}

func NewHandlers(services *Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Registration: NewRegistrationHandler(services.RegistrationService),
		Gallery:      NewGalleryHandler(services.GalleryService),
		Admin:        NewAdminHandler(services.AdminService, services.IngestService, cfg.Upload.MaxFiles),
		Auth:         NewAuthHandler(services.AuthService, cfg.JWT.Expiry),
		Health:       NewHealthHandler(services.HealthChecks, cfg.App.Name),
		Log:          NewLogHandler(),
	}
}
