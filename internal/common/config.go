package common

import (
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	Service ServiceConfig
	Export  ExportConfig
}

// ServiceConfig holds extraction-service configuration
type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ExportConfig holds artifact-export configuration
type ExportConfig struct {
	OutputDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL: getEnv("DOCASSIST_SERVICE_URL", "http://localhost:8080"),
			Timeout: getEnvAsDuration("DOCASSIST_TIMEOUT", 5*time.Minute),
		},
		Export: ExportConfig{
			OutputDir: getEnv("DOCASSIST_OUTPUT_DIR", "."),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "DOCASSIST_SERVICE_URL is required", ErrSelection)
	}
	if c.Service.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "DOCASSIST_TIMEOUT must be positive", ErrSelection)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
