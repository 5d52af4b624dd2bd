package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, read once at startup.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte
	TokenTTL    time.Duration
	TavilyKey   string
	FluxKey     string
	AllowOrigin string
	Env         string
}

// ErrMissingSecret is returned when no signing secret is configured.
// Callers must treat this as fatal at startup.
var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// Load builds a Config from environment variables.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	cfg := &Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   []byte(secret),
		TokenTTL:    24 * time.Hour,
		TavilyKey:   os.Getenv("TAVILY_API_KEY"),
		FluxKey:     os.Getenv("FLUX_API_KEY"),
		AllowOrigin: os.Getenv("ALLOW_ORIGIN"),
		Env:         os.Getenv("ENV"),
	}

	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "explorer.db"
	}
	if cfg.AllowOrigin == "" {
		cfg.AllowOrigin = "http://localhost:5173"
	}
	if hours := os.Getenv("TOKEN_TTL_HOURS"); hours != "" {
		if h, err := strconv.Atoi(hours); err == nil && h > 0 {
			cfg.TokenTTL = time.Duration(h) * time.Hour
		}
	}

	return cfg, nil
}
