package config_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finanalysis/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(20<<20), cfg.UploadMaxBytes)
	assert.Equal(t, "30-M", cfg.UploadRateLimit)
	assert.True(t, decimal.NewFromInt(50).Equal(cfg.ImmaterialThreshold))
	assert.Equal(t, 20*time.Second, cfg.SummaryTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "@every 1h", cfg.SessionSweepSchedule)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("IMMATERIAL_THRESHOLD", "125.5")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SUMMARY_TIMEOUT", "not-a-duration")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, decimal.RequireFromString("125.5").Equal(cfg.ImmaterialThreshold))
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20*time.Second, cfg.SummaryTimeout)
}
