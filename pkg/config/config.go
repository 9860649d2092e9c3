package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	FaceAPI   FaceAPIConfig
	Matching  MatchingConfig
	Storage   StorageConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Sentry    SentryConfig
	Log       LogConfig
	QR        QRConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Env           string
	FrontendURL   string // Base URL encoded into gallery QR codes
	CORSOrigins   string
	BodyLimitMB   int
	DeleteOrphans bool // Delete photos left without matches when their last user is removed
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "memory"
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// AdminConfig holds the bootstrap admin account, seeded when no admin exists.
type AdminConfig struct {
	Email    string
	Password string
}

type FaceAPIConfig struct {
	BaseURL       string // Base URL of the face embedding service
	Enabled       bool
	Timeout       time.Duration
	MaxDimension  int     // Longest side sent to the face service
	MinConfidence float64 // Detections below this are ignored
}

type MatchingConfig struct {
	Threshold     float64 // Max cosine distance counted as a match
	Index         string  // "exact" or "hnsw"
	HNSWNeighbors int
	Concurrency   int
	BatchLimit    int
	StaleAfter    time.Duration
	AutoCron      string // Empty disables scheduled batches
}

type StorageConfig struct {
	Driver     string // "local" or "s3"
	LocalDir   string
	S3Bucket   string
	S3Region   string
	S3Prefix   string
	S3Endpoint string
}

type UploadConfig struct {
	MaxFileBytes int64
	MaxFiles     int
}

type RateLimitConfig struct {
	Enabled           bool
	MaxRequests       int
	WindowSeconds     int
	AuthMaxRequests   int
	AuthWindowSeconds int
}

type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

type LogConfig struct {
	Dir     string
	Level   string
	Console bool
}

type QRConfig struct {
	Size     int
	CacheTTL time.Duration
}

const defaultJWTSecret = "your-secret-key"

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "Event Gallery"),
			Port:          getEnv("APP_PORT", "8001"),
			Env:           getEnv("APP_ENV", "development"),
			FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
			BodyLimitMB:   getEnvInt("APP_BODY_LIMIT_MB", 200),
			DeleteOrphans: getEnvBool("DELETE_ORPHANED_PHOTOS", false),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "event_gallery"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
			Expiry: getEnvDuration("JWT_EXPIRY", 12*time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@event.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		FaceAPI: FaceAPIConfig{
			BaseURL:       strings.TrimRight(getEnv("FACE_API_URL", "http://localhost:5000"), "/"),
			Enabled:       getEnvBool("FACE_API_ENABLED", true),
			Timeout:       getEnvDuration("FACE_API_TIMEOUT", 120*time.Second),
			MaxDimension:  getEnvInt("FACE_API_MAX_DIMENSION", 1600),
			MinConfidence: getEnvFloat("FACE_MIN_CONFIDENCE", 0.5),
		},
		Matching: MatchingConfig{
			Threshold:     getEnvFloat("MATCH_THRESHOLD", 0.45),
			Index:         getEnv("MATCH_INDEX", "exact"),
			HNSWNeighbors: getEnvInt("MATCH_HNSW_NEIGHBORS", 16),
			Concurrency:   getEnvInt("MATCH_CONCURRENCY", 3),
			BatchLimit:    getEnvInt("MATCH_BATCH_LIMIT", 500),
			StaleAfter:    getEnvDuration("MATCH_STALE_AFTER", 10*time.Minute),
			AutoCron:      getEnv("MATCH_AUTO_CRON", ""),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "local"),
			LocalDir:   getEnv("UPLOAD_DIR", "uploads"),
			S3Bucket:   getEnv("S3_BUCKET", ""),
			S3Region:   getEnv("S3_REGION", ""),
			S3Prefix:   getEnv("S3_PREFIX", ""),
			S3Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Upload: UploadConfig{
			MaxFileBytes: int64(getEnvInt("UPLOAD_MAX_FILE_BYTES", 25*1024*1024)),
			MaxFiles:     getEnvInt("UPLOAD_MAX_FILES", 200),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			MaxRequests:       getEnvInt("RATE_LIMIT_MAX", 120),
			WindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW", 60),
			AuthMaxRequests:   getEnvInt("RATE_LIMIT_AUTH_MAX", 10),
			AuthWindowSeconds: getEnvInt("RATE_LIMIT_AUTH_WINDOW", 60),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.2),
		},
		Log: LogConfig{
			Dir:     getEnv("LOG_DIR", "logs"),
			Level:   getEnv("LOG_LEVEL", "info"),
			Console: getEnvBool("LOG_CONSOLE", true),
		},
		QR: QRConfig{
			Size:     getEnvInt("QR_SIZE", 256),
			CacheTTL: getEnvDuration("QR_CACHE_TTL", 24*time.Hour),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.App.Env == "production" && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Matching.Threshold <= 0 || c.Matching.Threshold >= 2 {
		return fmt.Errorf("MATCH_THRESHOLD must be within (0, 2), got %v", c.Matching.Threshold)
	}
	switch c.Matching.Index {
	case "exact", "hnsw":
	default:
		return fmt.Errorf("unknown MATCH_INDEX %q", c.Matching.Index)
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Matching.Concurrency < 1 {
		c.Matching.Concurrency = 1
	}
	return nil
}

// CORSOriginList splits CORS_ORIGINS into trimmed entries.
func (c *Config) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.App.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return strings.Trim(value, `"'`)
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
