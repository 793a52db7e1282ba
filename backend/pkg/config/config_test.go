package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vidtube/backend/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Env:               "development",
		StoreDriver:       StoreDriverBadger,
		RequestTimeout:    time.Second,
		DefaultPageLimit:  10,
		MaxPageLimit:      100,
		MaxToggleAttempts: 5,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORE_DRIVER", StoreDriverBadger)
	t.Setenv("MAX_PAGE_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverBadger, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.DefaultPageLimit)
	assert.Equal(t, 50, cfg.MaxPageLimit)
	assert.Equal(t, 5, cfg.MaxToggleAttempts)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoad_IgnoresMalformedInt(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORE_DRIVER", StoreDriverBadger)
	t.Setenv("DEFAULT_PAGE_LIMIT", "ten")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.DefaultPageLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"neo4j without uri", func(c *Config) { c.StoreDriver = StoreDriverNeo4j; c.Neo4jUser = "neo4j"; c.Neo4jPassword = "pw" }, true},
		{"production without secret", func(c *Config) { c.Env = "production" }, true},
		{"production with secret", func(c *Config) { c.Env = "production"; c.JWTSecret = "s" }, false},
		{"max below default", func(c *Config) { c.MaxPageLimit = 5 }, true},
		{"zero attempts", func(c *Config) { c.MaxToggleAttempts = 0 }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
		})
	}
}
