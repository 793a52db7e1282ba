package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "vidtube/backend/pkg/errors"
)

// Store drivers
const (
	StoreDriverNeo4j  = "neo4j"
	StoreDriverBadger = "badger"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Store
	StoreDriver string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Badger
	BadgerDir string // Empty means an in-memory store

	// Auth
	JWTSecret string

	// Request handling
	RequestTimeout    time.Duration
	DefaultPageLimit  int
	MaxPageLimit      int
	MaxToggleAttempts int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", ""),
		StoreDriver:       getEnv("STORE_DRIVER", StoreDriverNeo4j),
		Neo4jURI:          getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:         getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:     getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:     getEnv("NEO4J_DATABASE", ""),
		BadgerDir:         getEnv("BADGER_DIR", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 10000)) * time.Millisecond,
		DefaultPageLimit:  getEnvInt("DEFAULT_PAGE_LIMIT", 10),
		MaxPageLimit:      getEnvInt("MAX_PAGE_LIMIT", 100),
		MaxToggleAttempts: getEnvInt("MAX_TOGGLE_ATTEMPTS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	case StoreDriverBadger:
	default:
		return apperrors.NewConfigValidationFailed("STORE_DRIVER", fmt.Sprintf("unknown driver %q", c.StoreDriver))
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return apperrors.NewConfigMissingRequired("JWT_SECRET")
	}
	if c.DefaultPageLimit < 1 {
		return apperrors.NewConfigValidationFailed("DEFAULT_PAGE_LIMIT", "must be positive")
	}
	if c.MaxPageLimit < c.DefaultPageLimit {
		return apperrors.NewConfigValidationFailed("MAX_PAGE_LIMIT", "must not be below DEFAULT_PAGE_LIMIT")
	}
	if c.MaxToggleAttempts < 1 {
		return apperrors.NewConfigValidationFailed("MAX_TOGGLE_ATTEMPTS", "must be positive")
	}
	if c.RequestTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("REQUEST_TIMEOUT_MS", "must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
