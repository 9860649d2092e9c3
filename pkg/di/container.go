package di

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"event-gallery/application/serviceimpl"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/infrastructure/faceapi"
	"event-gallery/infrastructure/memory"
	"event-gallery/infrastructure/postgres"
	"event-gallery/infrastructure/redis"
	"event-gallery/infrastructure/storage"
	"event-gallery/infrastructure/websocket"
	"event-gallery/infrastructure/worker"
	"event-gallery/interfaces/api/handlers"
	"event-gallery/pkg/config"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/scheduler"
)

const (
	workerQueueSize    = 128
	workerPollInterval = 30 * time.Second
	startupTimeout     = 30 * time.Second
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB               *gorm.DB
	MemoryStore      *memory.Store
	RedisClient      *redis.RedisClient
	ObjectStore      services.ObjectStore
	FaceClient       *faceapi.FaceClient
	Extractor        services.FaceExtractor
	JobScheduler     scheduler.JobScheduler
	WebSocketManager *websocket.Manager

	// Repositories
	UserRepository  repositories.UserRepository
	PhotoRepository repositories.PhotoRepository
	MatchRepository repositories.MatchRepository
	BatchRepository repositories.BatchRepository
	AdminRepository repositories.AdminRepository
	StatsRepository repositories.StatsRepository

	// Services
	RegistrationService services.RegistrationService
	IngestService       services.IngestService
	MatchingService     services.MatchingService
	GalleryService      services.GalleryService
	AdminService        services.AdminService
	AuthService         services.AuthService

	// Workers
	MatchWorker *worker.MatchWorker
}

func NewContainer() *Container {
	return &Container{}
}

// Initialize wires everything the API server needs and starts the
// background worker and scheduler.
func (c *Container) Initialize() error {
	if err := c.InitializeCore(); err != nil {
		return err
	}
	if err := c.initWorkers(); err != nil {
		return err
	}
	if err := c.initScheduler(); err != nil {
		return err
	}
	return nil
}

// InitializeCore wires config, storage and services without starting any
// background work. The CLI uses it directly.
func (c *Container) InitializeCore() error {
	if err := c.initConfig(); err != nil {
		return err
	}
	if err := c.initInfrastructure(); err != nil {
		return err
	}
	if err := c.initRepositories(); err != nil {
		return err
	}
	return c.initServices()
}

func (c *Container) initConfig() error {
	if c.Config != nil {
		return nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", map[string]interface{}{
		"env":       cfg.App.Env,
		"db_driver": cfg.Database.Driver,
		"storage":   cfg.Storage.Driver,
	})
	return nil
}

// WithConfig sets the configuration instead of loading it from the environment.
func (c *Container) WithConfig(cfg *config.Config) *Container {
	c.Config = cfg
	return c
}

func (c *Container) initInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	switch c.Config.Database.Driver {
	case "memory":
		c.MemoryStore = memory.NewStore()
		logger.StartupWarn("memory_store", "Using the in-memory store; data is lost on restart", nil)
	default:
		db, err := postgres.NewDatabase(c.Config.Database)
		if err != nil {
			return err
		}
		c.DB = db
		logger.Startup("db_connected", "Database connected", nil)

		if err := postgres.Migrate(db); err != nil {
			return err
		}
		logger.Startup("db_migrated", "Database migrated", nil)
	}

	// Redis only caches QR codes, so the server runs without it
	if c.Config.Redis.Enabled {
		client := redis.NewRedisClient(redis.RedisConfig{
			Host:     c.Config.Redis.Host,
			Port:     c.Config.Redis.Port,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err := client.Ping(ctx); err != nil {
			logger.StartupWarn("redis_connection_failed", "Redis connection failed, QR cache disabled", map[string]interface{}{"error": err.Error()})
			client.Close()
		} else {
			c.RedisClient = client
			logger.Startup("redis_connected", "Redis connected", nil)
		}
	}

	store, err := storage.New(ctx, c.Config.Storage)
	if err != nil {
		return err
	}
	c.ObjectStore = store
	logger.Startup("storage_initialized", "Object storage initialized", map[string]interface{}{"driver": c.Config.Storage.Driver})

	if c.Config.FaceAPI.Enabled {
		c.FaceClient = faceapi.NewFaceClient(c.Config.FaceAPI)
		c.Extractor = c.FaceClient
		if !c.FaceClient.IsAvailable(ctx) {
			logger.StartupWarn("face_api_unavailable", "Face API is not reachable yet", map[string]interface{}{"url": c.Config.FaceAPI.BaseURL})
		}
	} else {
		c.Extractor = faceapi.Unavailable{}
		logger.StartupWarn("face_api_disabled", "Face API is disabled; registration and matching will fail", nil)
	}

	c.WebSocketManager = websocket.NewManager()
	return nil
}

func (c *Container) initRepositories() error {
	if c.MemoryStore != nil {
		c.UserRepository = c.MemoryStore.Users()
		c.PhotoRepository = c.MemoryStore.Photos()
		c.MatchRepository = c.MemoryStore.Matches()
		c.BatchRepository = c.MemoryStore.Batches()
		c.AdminRepository = c.MemoryStore.Admins()
		c.StatsRepository = c.MemoryStore.Stats()
	} else {
		c.UserRepository = postgres.NewUserRepository(c.DB)
		c.PhotoRepository = postgres.NewPhotoRepository(c.DB)
		c.MatchRepository = postgres.NewMatchRepository(c.DB)
		c.BatchRepository = postgres.NewBatchRepository(c.DB)
		c.AdminRepository = postgres.NewAdminRepository(c.DB)
		c.StatsRepository = postgres.NewStatsRepository(c.DB)
	}
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) cache() services.Cache {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.MatchingService = serviceimpl.NewMatchingService(
		c.UserRepository,
		c.PhotoRepository,
		c.MatchRepository,
		c.BatchRepository,
		c.Extractor,
		c.ObjectStore,
		cfg.Matching,
	)
	c.RegistrationService = serviceimpl.NewRegistrationService(
		c.UserRepository,
		c.Extractor,
		c.MatchingService,
		c.ObjectStore,
		c.cache(),
		cfg.App.DeleteOrphans,
	)
	c.IngestService = serviceimpl.NewIngestService(c.PhotoRepository, c.ObjectStore, cfg.Upload.MaxFileBytes)
	c.GalleryService = serviceimpl.NewGalleryService(
		c.UserRepository,
		c.MatchRepository,
		c.ObjectStore,
		c.cache(),
		cfg.App.FrontendURL,
		cfg.QR.Size,
		cfg.QR.CacheTTL,
	)
	c.AdminService = serviceimpl.NewAdminService(
		c.UserRepository,
		c.PhotoRepository,
		c.StatsRepository,
		c.RegistrationService,
		c.IngestService,
		c.MatchingService,
	)
	c.AuthService = serviceimpl.NewAuthService(c.AdminRepository, cfg.JWT, cfg.Admin)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initWorkers() error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := c.AuthService.EnsureDefaultAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	c.MatchWorker = worker.NewMatchWorker(c.MatchingService, c.WebSocketManager, workerQueueSize, workerPollInterval)
	c.MatchWorker.Start()

	if _, err := c.MatchingService.RecoverInterrupted(ctx); err != nil {
		logger.StartupWarn("recover_batches_failed", "Failed to recover interrupted batches", map[string]interface{}{"error": err.Error()})
	}
	if err := c.MatchingService.ResumeQueued(ctx); err != nil {
		logger.StartupWarn("resume_batches_failed", "Failed to resume queued batches", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (c *Container) initScheduler() error {
	c.JobScheduler = scheduler.NewJobScheduler()
	if err := scheduler.RegisterMatchingJobs(c.JobScheduler, c.MatchingService, c.Config.Matching); err != nil {
		return fmt.Errorf("failed to schedule matching jobs: %w", err)
	}
	c.JobScheduler.Start()
	logger.Startup("scheduler_started", "Job scheduler started", nil)
	return nil
}

// HealthChecks returns one probe per dependency for the health endpoint.
func (c *Container) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"storage": c.ObjectStore.Ping,
	}
	if c.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.Ping
	}
	if c.FaceClient != nil {
		checks["face_api"] = func(ctx context.Context) error {
			_, err := c.FaceClient.Health(ctx)
			return err
		}
	}
	return checks
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	if c.JobScheduler != nil && c.JobScheduler.IsRunning() {
		c.JobScheduler.Stop()
	}

	// the running batch releases its claims before the database closes
	if c.MatchWorker != nil && c.MatchWorker.IsRunning() {
		c.MatchWorker.Stop()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		RegistrationService: c.RegistrationService,
		IngestService:       c.IngestService,
		GalleryService:      c.GalleryService,
		AdminService:        c.AdminService,
		AuthService:         c.AuthService,
		HealthChecks:        c.HealthChecks(),
	}
}
