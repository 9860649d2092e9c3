// Package storage holds the object stores for uploaded photos.
package storage

import (
	"context"
	"fmt"

	"event-gallery/domain/services"
	"event-gallery/pkg/config"
)

// New returns the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (services.ObjectStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
