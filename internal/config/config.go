package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all process configuration, read once at startup
type Config struct {
	// Base URL of the remote sync API
	APIBaseURL string
	// Bearer token for the remote API
	APIKey string
	// Database backend: "sqlite" or "postgres"
	DBType string
	// Postgres connection string (DB_TYPE=postgres only)
	DatabaseURL string
	// Directory for the sqlite database file
	DataDir string
	// Days to keep day-scoped persistence keys before the sweep purges them
	RetentionDays int
	// Skip the all-words-clicked gate before the quiz (debug aid)
	SkipWordGating bool
	// Serve the sync API locally from the embedded store instead of
	// talking to a remote backend
	LocalMode bool
	// Listen address for local mode
	LocalAddr string
	// Enable debug logging
	Debug bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:     getenv("API_BASE_URL", "https://api.lithuaningo.com/v1"),
		APIKey:         os.Getenv("API_KEY"),
		DBType:         getenv("DB_TYPE", "sqlite"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DataDir:        getenv("DATA_DIR", "data"),
		RetentionDays:  getenvInt("RETENTION_DAYS", 14),
		SkipWordGating: getenvBool("SKIP_WORD_GATING"),
		LocalMode:      getenvBool("LOCAL_MODE"),
		LocalAddr:      getenv("LOCAL_ADDR", "127.0.0.1:8917"),
		Debug:          getenvBool("DEBUG"),
	}

	if cfg.DBType != "sqlite" && cfg.DBType != "postgres" {
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
	}
	if cfg.RetentionDays < 1 {
		return nil, fmt.Errorf("RETENTION_DAYS must be at least 1")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
