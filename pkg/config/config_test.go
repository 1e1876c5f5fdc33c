package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimitRequests)
	assert.Equal(t, 10, cfg.Server.UploadLimitRequest)
	assert.Equal(t, 15*time.Minute, cfg.Server.UploadLimitWindow)
	assert.Equal(t, "USD", cfg.Import.CurrencyCode)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("UPLOAD_MAX_AGE", "30m")
	t.Setenv("DISPLAY_CURRENCY", "eur")
	t.Setenv("POSTGRES_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Server.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Storage.MaxAge)
	assert.Equal(t, "EUR", cfg.Import.CurrencyCode)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN(), "port=5432")
}

func TestLoad_RejectsBadLimits(t *testing.T) {
	t.Setenv("UPLOAD_LIMIT_REQUESTS", "0")
	_, err := Load()
	assert.Error(t, err)
}
