package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings. It is built once in main and passed
// down explicitly; nothing reads the environment after startup.
type Config struct {
	Addr        string
	Environment string

	// Storage
	StorageBackend string // postgres | sqlite | file
	DatabaseURL    string
	SQLitePath     string
	DataDir        string

	// Uploads
	UploadsDir         string
	UploadsFallbackDir string
	RedisAddr          string
	UploadTTL          time.Duration

	// Auth
	JWTSecret  string
	SessionTTL time.Duration

	// Issuance
	TemplatesDir  string
	VerifyBaseURL string

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads an optional .env file and then the environment, applying
// defaults suitable for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:           getenv("ADDR", ":8080"),
		Environment:    getenv("ENVIRONMENT", "development"),
		StorageBackend: getenv("STORAGE_BACKEND", "sqlite"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DataDir:        getenv("DATA_DIR", "db"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret-change-me"),
		TemplatesDir:   getenv("TEMPLATES_DIR", "pdfs"),
		VerifyBaseURL:  getenv("VERIFY_BASE_URL", "http://localhost:8080"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getenv("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
	}

	cfg.SQLitePath = getenv("SQLITE_PATH", filepath.Join(cfg.DataDir, "dc.sqlite"))
	cfg.UploadsDir = getenv("UPLOADS_DIR", filepath.Join(cfg.DataDir, "uploads"))
	cfg.UploadsFallbackDir = getenv("UPLOADS_FALLBACK_DIR", filepath.Join(os.TempDir(), "dcportal", "uploads"))

	var err error
	if cfg.UploadTTL, err = getDuration("UPLOAD_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 465); err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	case "sqlite", "file":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want postgres, sqlite or file)", cfg.StorageBackend)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
