package config

import (
	"os"
	"strconv"
	"time"

	"lavanda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Forecast ForecastConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ForecastConfig holds the operational knobs of the forecasting pipeline.
// The numeric defaults are domain-tuned, not algorithmic contract.
type ForecastConfig struct {
	Timezone         string
	BackfillStart    string // ISO date; empty means "start of revenue history"
	ClosureThreshold float64
	MarginFloor      float64
	HumidityWeight   float64
	PrecipWeight     float64
	SunDeficitWeight float64
	RollingWindow    int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Forecast: ForecastConfig{
			Timezone:         getEnvOrDefault("BUSINESS_TIMEZONE", "America/Sao_Paulo"),
			BackfillStart:    getEnvOrDefault("BACKFILL_START", ""),
			ClosureThreshold: getEnvFloatOrDefault("CLOSURE_THRESHOLD", 100),
			MarginFloor:      getEnvFloatOrDefault("MARGIN_FLOOR", 50),
			HumidityWeight:   getEnvFloatOrDefault("DRYING_HUMIDITY_WEIGHT", 0.05),
			PrecipWeight:     getEnvFloatOrDefault("DRYING_PRECIP_WEIGHT", 0.3),
			SunDeficitWeight: getEnvFloatOrDefault("DRYING_SUN_WEIGHT", 0.5),
			RollingWindow:    getEnvIntOrDefault("ACCURACY_ROLLING_DAYS", 30),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Location resolves the configured business timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Forecast.Timezone)
	if err != nil {
		return nil, errors.ConfigInvalid("invalid BUSINESS_TIMEZONE: " + c.Forecast.Timezone)
	}
	return loc, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Forecast.ClosureThreshold < 0 {
		return errors.ConfigInvalid("CLOSURE_THRESHOLD must be non-negative")
	}
	if config.Forecast.RollingWindow <= 0 {
		return errors.ConfigInvalid("ACCURACY_ROLLING_DAYS must be positive")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
