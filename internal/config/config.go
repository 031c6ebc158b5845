// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-in-production"

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"
	MaxUploadMB int

	// Security
	JWTSecret         string
	StaffUsername     string
	StaffPasswordHash string // bcrypt
	AllowedOrigins    []string
	RateLimitRPM      int

	// Redis (shared rate limiting); empty disables it
	RedisURL string

	// Datastore
	StoreDriver string // "postgres" | "mongo"
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	DBTimeout   time.Duration

	// Object storage
	StorageProvider  string // "s3" | "cloudinary"
	Region           string
	AccessKey        string
	SecretKey        string
	BucketName       string
	S3PublicBaseURL  string
	CloudinaryURL    string
	CloudinaryFolder string
	StorageTimeout   time.Duration

	// Classification service
	ClassifierURL     string
	ClassifierTimeout time.Duration

	// Circuit breaker around upstream calls
	BreakerEnabled      bool
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration

	// Events
	NATSURL           string
	NATSSubjectPrefix string

	MetricsEnabled      bool
	StatusGaugeInterval time.Duration
}

// DashboardConfig configures the staff dashboard binary.
type DashboardConfig struct {
	Port        int
	Environment string
	APIBaseURL  string
	DefaultLang string
	APITimeout  time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8001),
		Environment: getEnv("ENVIRONMENT", "development"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		StaffUsername:     getEnv("STAFF_USERNAME", "admin"),
		StaffPasswordHash: getEnv("STAFF_PASSWORD_HASH", ""),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RateLimitRPM:      getEnvInt("RATE_LIMIT_RPM", 120),

		RedisURL: getEnv("REDIS_URL", ""),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "railmadad"),
		DBTimeout:   getEnvDuration("DB_TIMEOUT", 8*time.Second),

		StorageProvider:  strings.ToLower(getEnv("STORAGE_PROVIDER", "s3")),
		Region:           getEnv("REGION", "ap-south-1"),
		AccessKey:        getEnv("ACCESS_KEY", ""),
		SecretKey:        getEnv("SECRET_KEY", ""),
		BucketName:       getEnv("BUCKET_NAME", ""),
		S3PublicBaseURL:  getEnv("S3_PUBLIC_BASE_URL", ""),
		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "complaints"),
		StorageTimeout:   getEnvDuration("STORAGE_TIMEOUT", 60*time.Second),

		ClassifierURL:     getEnv("CLASSIFIER_URL", "http://localhost:8000"),
		ClassifierTimeout: getEnvDuration("CLASSIFIER_TIMEOUT", 30*time.Second),

		BreakerEnabled:      getEnvBool("BREAKER_ENABLED", true),
		BreakerMinRequests:  getEnvInt("BREAKER_MIN_REQUESTS", 10),
		BreakerFailureRatio: getEnvFloat("BREAKER_FAILURE_RATIO", 0.5),
		BreakerOpenTimeout:  getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "complaints"),

		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		StatusGaugeInterval: getEnvDuration("STATUS_GAUGE_INTERVAL", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names and, in production, the required secrets.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "mongo":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or mongo, got %q", c.StoreDriver)
	}
	switch c.StorageProvider {
	case "s3", "cloudinary":
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be s3 or cloudinary, got %q", c.StorageProvider)
	}
	if c.StatusGaugeInterval <= 0 {
		return fmt.Errorf("STATUS_GAUGE_INTERVAL must be positive, got %s", c.StatusGaugeInterval)
	}

	// Validate required fields in production
	if c.Environment == "production" {
		if c.StoreDriver == "postgres" && c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.StorageProvider == "s3" && c.BucketName == "" {
			return fmt.Errorf("BUCKET_NAME is required in production")
		}
		if c.StorageProvider == "cloudinary" && c.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required in production")
		}
	}
	return nil
}

// MaxUploadBytes is the multipart body cap.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// LoadDashboard reads the dashboard binary's configuration.
func LoadDashboard() *DashboardConfig {
	_ = godotenv.Load()

	return &DashboardConfig{
		Port:        getEnvInt("DASHBOARD_PORT", 3000),
		Environment: getEnv("ENVIRONMENT", "development"),
		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8001"), "/"),
		DefaultLang: getEnv("DEFAULT_LANG", "en"),
		APITimeout:  getEnvDuration("API_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
