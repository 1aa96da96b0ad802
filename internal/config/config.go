package config

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Record source configuration.
	SourceURL       string
	SourceCategory  string
	SourceLimit     int
	SourceTimeout   time.Duration
	SourceAppToken  string
	SourceFile      string
	SourceCacheSize int
	SourceCacheTTL  time.Duration
	SourceRateLimit float64

	RefreshInterval time.Duration
}

const maxSourceLimit = 50000

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first when
// present; variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parsePositiveDuration("SOURCE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("SOURCE_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	limit, err := parseSourceLimit()
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("SOURCE_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid SOURCE_RATE_LIMIT: must be a positive number of requests per second")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SourceURL:       sharedcfg.EnvOrDefault("SOURCE_URL", "https://data.cityofnewyork.us/resource/43nn-pn8j.json"),
		SourceCategory:  sharedcfg.EnvOrDefault("SOURCE_CATEGORY", "Coffee/Tea"),
		SourceLimit:     limit,
		SourceTimeout:   sourceTimeout,
		SourceAppToken:  os.Getenv("SOURCE_APP_TOKEN"),
		SourceFile:      os.Getenv("SOURCE_FILE"),
		SourceCacheSize: parseCacheSize(),
		SourceCacheTTL:  cacheTTL,
		SourceRateLimit: rateLimit,

		RefreshInterval: refreshInterval,
	}

	if cfg.SourceFile == "" {
		u, err := url.Parse(cfg.SourceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errors.New("invalid SOURCE_URL")
		}
	}
	if cfg.SourceCategory == "" {
		return nil, errors.New("SOURCE_CATEGORY is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseSourceLimit() (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault("SOURCE_LIMIT", "1000"))
	if err != nil || n < 1 || n > maxSourceLimit {
		return 0, errors.New("invalid SOURCE_LIMIT: must be between 1 and 50000")
	}
	return n, nil
}

func parseCacheSize() int {
	if s := os.Getenv("SOURCE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 128
}
