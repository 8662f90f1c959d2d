package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	MaxImagePixels     int64
	LogLevel           string

	// JitterSeed pins the random placeholder signals when set.
	JitterSeed *int64
	MaxWorkers int

	AzureAccountName string
	AzureAccountKey  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials were supplied
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// LoadDotEnv merges variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 25*1024*1024), // 25MB
		MaxImagePixels:     parseIntOrDefault("MAX_IMAGE_PIXELS", 100_000_000),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		MaxWorkers:         int(parseIntOrDefault("MAX_WORKERS", 0)),
		AzureAccountName:   strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureAccountKey:    strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
	}

	if raw := strings.TrimSpace(os.Getenv("JITTER_SEED")); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid JITTER_SEED: %q", raw)
		}
		cfg.JitterSeed = &seed
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.MaxImagePixels <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", cfg.MaxImagePixels)
	}
	if cfg.MaxWorkers < 0 {
		return nil, fmt.Errorf("MAX_WORKERS must be >= 0 (got %d)", cfg.MaxWorkers)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
