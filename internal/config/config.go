// Package config reads service settings from environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/database"
	"github.com/joho/godotenv"
)

// Repository drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all runtime settings.
type Config struct {
	Port               string
	RepositoryDriver   string
	Database           database.Config
	PreferencesDB      string
	SessionIdleTimeout time.Duration
	LogLevel           string
}

// Load reads envFile (when present) into the process environment without
// overriding variables that are already set, then builds the Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the Config from environment variables, falling back to
// local-development defaults.
func FromEnv() (*Config, error) {
	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT: %w", err)
	}
	if idle <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		RepositoryDriver: getEnv("REPOSITORY_DRIVER", DriverPostgres),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "tabletop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		PreferencesDB:      getEnv("PREFERENCES_DB", "./preferences.db"),
		SessionIdleTimeout: idle,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.RepositoryDriver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("REPOSITORY_DRIVER: unknown driver %q", cfg.RepositoryDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
