package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/pkg/config"
)

func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)
	return Open(dsn, cfg.LogLevel)
}

// Open connects with a raw DSN. Driver errors are translated so that unique
// and foreign key violations surface as gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func Migrate(db *gorm.DB) error {
	// Enable pgvector extension for face descriptors
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Photo{},
		&models.PhotoFace{},
		&models.Match{},
		&models.AdminUser{},
		&models.MatchBatch{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %w", err)
	}

	return runIndexMigrations(db)
}

// runIndexMigrations adds what struct tags cannot express.
func runIndexMigrations(db *gorm.DB) error {
	migrations := []string{
		// Pending scan order
		`CREATE INDEX IF NOT EXISTS idx_photos_status_uploaded ON photos(status, uploaded_at, id)`,
		// Reaper scan
		`CREATE INDEX IF NOT EXISTS idx_photos_claimed_at ON photos(claimed_at) WHERE status = 'processing'`,
		`CREATE INDEX IF NOT EXISTS idx_photo_matches_user ON photo_matches(user_id)`,
		`DO $$ BEGIN
			ALTER TABLE photos ADD CONSTRAINT chk_photos_status
				CHECK (status IN ('pending', 'processing', 'processed'));
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}

	for _, sql := range migrations {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("migration failed: %.50s: %w", sql, err)
		}
	}
	return nil
}

// translate maps gorm errors onto repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", repositories.ErrReferenceMissing, err)
	default:
		return err
	}
}
