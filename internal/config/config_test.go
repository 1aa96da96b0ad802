package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultSourceURL = "https://data.cityofnewyork.us/resource/43nn-pn8j.json"
	testAppToken     = "app-token-123"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, defaultSourceURL, cfg.SourceURL)
	assert.Equal(t, "Coffee/Tea", cfg.SourceCategory)
	assert.Equal(t, 1000, cfg.SourceLimit)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout)
	assert.Empty(t, cfg.SourceAppToken)
	assert.Empty(t, cfg.SourceFile)
	assert.Equal(t, 128, cfg.SourceCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.SourceCacheTTL)
	assert.InDelta(t, 5.0, cfg.SourceRateLimit, 0)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SOURCE_URL", "http://localhost:9999/resource/test.json")
	t.Setenv("SOURCE_CATEGORY", "Bakery Products/Desserts")
	t.Setenv("SOURCE_LIMIT", "250")
	t.Setenv("SOURCE_TIMEOUT", "3s")
	t.Setenv("SOURCE_APP_TOKEN", testAppToken)
	t.Setenv("SOURCE_FILE", "data/mock/coffee_tea_inspections.json")
	t.Setenv("SOURCE_CACHE_SIZE", "16")
	t.Setenv("SOURCE_CACHE_TTL", "1m")
	t.Setenv("SOURCE_RATE_LIMIT", "0.5")
	t.Setenv("REFRESH_INTERVAL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:9999/resource/test.json", cfg.SourceURL)
	assert.Equal(t, "Bakery Products/Desserts", cfg.SourceCategory)
	assert.Equal(t, 250, cfg.SourceLimit)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout)
	assert.Equal(t, testAppToken, cfg.SourceAppToken)
	assert.Equal(t, "data/mock/coffee_tea_inspections.json", cfg.SourceFile)
	assert.Equal(t, 16, cfg.SourceCacheSize)
	assert.Equal(t, time.Minute, cfg.SourceCacheTTL)
	assert.InDelta(t, 0.5, cfg.SourceRateLimit, 0)
	assert.Equal(t, 90*time.Second, cfg.RefreshInterval)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"SOURCE_TIMEOUT", "SOURCE_CACHE_TTL", "REFRESH_INTERVAL"} {
		for _, value := range []string{"bad", "0s", "-1m"} {
			t.Run(key+"="+value, func(t *testing.T) {
				t.Setenv(key, value)
				_, err := Load()
				require.Error(t, err)
				assert.Contains(t, err.Error(), key)
			})
		}
	}
}

func TestLoad_InvalidSourceLimit(t *testing.T) {
	for _, value := range []string{"0", "-5", "50001", "lots"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("SOURCE_LIMIT", value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SOURCE_LIMIT")
		})
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	for _, value := range []string{"0", "-1", "fast"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("SOURCE_RATE_LIMIT", value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SOURCE_RATE_LIMIT")
		})
	}
}

func TestLoad_InvalidSourceURL(t *testing.T) {
	t.Setenv("SOURCE_URL", "not a url")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_URL")
}

func TestLoad_SourceFileSkipsURLValidation(t *testing.T) {
	t.Setenv("SOURCE_URL", "not a url")
	t.Setenv("SOURCE_FILE", "records.json")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "records.json", cfg.SourceFile)
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("SOURCE_CACHE_SIZE", "-3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.SourceCacheSize)
}
