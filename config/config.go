package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	FrontendURL string
	// Applicant store: "postgres" or "sqlite"
	StoreDriver string
	DBUrl       string
	SQLitePath  string
	// Resume storage: "local" or "s3"
	ResumeStorage  string
	UploadDir      string
	MaxUploadMB    int
	S3Region       string
	S3Bucket       string
	S3Prefix       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Endpoint     string // S3-compatible providers (Wasabi, MinIO)
	S3UsePathStyle bool
	// clamd address for resume scanning, disabled when empty
	ClamAVAddr string
	// Redis for rate limiting, optional
	RedisURL      string
	RedisPassword string
	// Rate limiting
	RateLimitWindowSeconds int
	RateLimitGlobal        int
	UploadsPerMinute       int
	// Bearer auth, disabled when empty
	AuthJWTSecret string
	// Audit trail of destructive operations
	AuditLog bool
}

func LoadConfig() (*Config, error) {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnvironment(),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DBUrl:       getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "applicants.sqlite"),

		ResumeStorage:  strings.ToLower(getEnv("RESUME_STORAGE", "local")),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 10),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Prefix:       getEnv("S3_PREFIX", "resumes/"),
		S3AccessKeyID:  getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:     strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", false),

		ClamAVAddr: getEnv("CLAMAV_ADDR", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobal:        getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),
		UploadsPerMinute:       getEnvInt("RATE_LIMIT_UPLOADS_PER_MINUTE", 10),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AuditLog:      getEnvBool("AUDIT_LOG", true),
	}

	if cfg.StoreDriver == "postgres" && cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.ResumeStorage == "s3" && cfg.S3Bucket == "" {
		log.Println("WARNING: RESUME_STORAGE=s3 but S3_BUCKET is empty. Uploads will fail.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// MaxUploadBytes is the resume size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}

// IsProduction reports whether GIN_MODE=release
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
