package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	TelegramToken string
	LogLevel      string
	Port          string
}

// Load loads configuration from environment variables. Missing required
// variables are reported together rather than one at a time.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		Port:          getEnvOrDefault("PORT", "8080"),
	}

	var err *multierror.Error
	if cfg.DatabaseURL == "" {
		err = multierror.Append(err, fmt.Errorf("DATABASE_URL environment variable is required"))
	}
	if cfg.RedisAddr == "" {
		err = multierror.Append(err, fmt.Errorf("REDIS_ADDR environment variable is required"))
	}

	return cfg, err.ErrorOrNil()
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
