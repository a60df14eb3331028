package config

import (
	"os"
	"strconv"
	"time"

	"goeda/internal/errors"
)

// ServerConfig holds the report service settings, read from the environment
type ServerConfig struct {
	Port           string
	GinMode        string
	ReportDir      string
	LogLevel       string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	// DatabaseURL enables POST /reports/query when set
	DatabaseURL string
}

// LoadServer reads the service configuration from environment variables
func LoadServer() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		ReportDir:      getEnvOrDefault("REPORT_DIR", "./reports"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "INFO"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 2*time.Minute),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}
	if err := validateServer(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.ConfigInvalid("REQUEST_TIMEOUT must be positive")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
