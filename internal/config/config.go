package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string

	// Directory service (ticketing/CMDB system of record)
	DirectoryBaseURL string
	DirectoryAPIKey  string

	// Roster import limits
	ImportMaxRows  int
	ImportMaxBytes int64

	// Optional HS256 secret for bearer-token auditor identity.
	// Empty means identity comes from the X-Auditor header only.
	IdentitySecret string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
// A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:      getEnv("AD_ENV", "development"),
		HTTPPort:         getEnv("AD_HTTP_PORT", "8080"),
		DatabasePath:     getEnv("AD_DB_PATH", filepath.Join("data", "assetdesk.db")),
		DirectoryBaseURL: getEnv("AD_DIRECTORY_URL", "http://localhost:8000"),
		DirectoryAPIKey:  getEnv("AD_DIRECTORY_API_KEY", ""),
		ImportMaxRows:    getEnvInt("AD_IMPORT_MAX_ROWS", 1000),
		ImportMaxBytes:   int64(getEnvInt("AD_IMPORT_MAX_BYTES", 5*1024*1024)),
		IdentitySecret:   getEnv("AD_IDENTITY_SECRET", ""),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}

	return fallback
}
