// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Web Server
	Port        int
	CORSOrigins []string

	// Storage
	StorageDriver string
	DBPath        string
	DatabaseURL   string

	// Auth
	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails []string

	// Bill defaults
	DefaultFlatFee       float64
	DefaultServiceCharge float64

	// Client-side edit coalescing
	Debounce time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, defaultValue string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		StorageDriver: strings.ToLower(get("STORAGE_DRIVER", DriverSQLite)),
		DBPath:        get("DB_PATH", "./data/rachadinha.db"),
		DatabaseURL:   getenv("DATABASE_URL"),
		JWTSecret:     get("JWT_SECRET", "dev-only-change-me"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(get("PORT", "8080")); err != nil || cfg.Port <= 0 {
		return nil, fmt.Errorf("PORT must be a positive integer, got %q", getenv("PORT"))
	}
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil || cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be a positive duration, got %q", getenv("TOKEN_TTL"))
	}
	if cfg.DefaultFlatFee, err = parseAmount("DEFAULT_FLAT_FEE", get("DEFAULT_FLAT_FEE", "1")); err != nil {
		return nil, err
	}
	if cfg.DefaultServiceCharge, err = parseAmount("DEFAULT_SERVICE_CHARGE", get("DEFAULT_SERVICE_CHARGE", "10")); err != nil {
		return nil, err
	}
	ms, err := strconv.Atoi(get("DEBOUNCE_MS", "500"))
	if err != nil || ms < 0 {
		return nil, fmt.Errorf("DEBOUNCE_MS must be a non-negative integer, got %q", getenv("DEBOUNCE_MS"))
	}
	cfg.Debounce = time.Duration(ms) * time.Millisecond

	cfg.CORSOrigins = splitList(get("CORS_ORIGINS", "*"))
	cfg.AdminEmails = splitList(getenv("ADMIN_EMAILS"))

	switch cfg.StorageDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func parseAmount(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, value)
	}
	return v, nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
