package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "merch")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DBNAME", "storefront")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.Debug())
	assert.Equal(t, "8080", cfg.HttpServer.Port)
	assert.Equal(t, []string{"*"}, cfg.HttpServer.CORSAllowedOrigins)
	assert.Equal(t, "9090", cfg.GrpcServer.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 720*time.Hour, cfg.Redis.HistoryTTL)
	assert.Equal(t, 500, cfg.Merch.PoolLimit)
	assert.Equal(t, time.Second, cfg.Merch.CountdownTick)
	assert.Equal(t, 30*time.Second, cfg.Merch.CampaignRefresh)
	assert.Empty(t, cfg.Merch.RulesFile)
	assert.Equal(t, "host=localhost port=5432 user=merch password=secret dbname=storefront sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("MERCH_POOL_LIMIT", "120")
	t.Setenv("MERCH_RULES_FILE", "/etc/merch/rules.yaml")
	t.Setenv("MERCH_COUNTDOWN_TICK", "500ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Debug())
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.HttpServer.CORSAllowedOrigins)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 120, cfg.Merch.PoolLimit)
	assert.Equal(t, "/etc/merch/rules.yaml", cfg.Merch.RulesFile)
	assert.Equal(t, 500*time.Millisecond, cfg.Merch.CountdownTick)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing postgres", func(t *testing.T) {
		setRequired(t)
		require.NoError(t, os.Unsetenv("POSTGRES_HOST"))
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad pool limit", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MERCH_POOL_LIMIT", "0")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MERCH_CAMPAIGN_REFRESH", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
