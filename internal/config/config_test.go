package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsNeedSpreadsheet(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SPREADSHEET_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMemoryBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, 10, cfg.RateLimit.PerMinute)
	assert.Equal(t, "model/sentiment_model.json", cfg.Classifier.ModelPath)
	assert.False(t, cfg.AdminEnabled())
	assert.False(t, cfg.Release())
}

func TestLoadSheetsBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sheets")
	t.Setenv("SPREADSHEET_ID", "abc")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/gcp.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Storage.SpreadsheetID)
}

func TestLoadAdminNeedsSecret(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AdminEnabled())
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "excel")

	_, err := Load()
	assert.Error(t, err)
}
