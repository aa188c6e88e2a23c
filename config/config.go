package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration for the scoring service
type Config struct {
	// Node Identity
	NodeName string

	// Server Configuration
	HTTPPort string

	// Database Configuration
	DatabaseHost string
	DatabasePort string
	DatabaseUser string
	DatabasePass string
	DatabaseName string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		NodeName: getEnv("NODE_NAME", "scorequorum-1"),

		// Server
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		// Database
		DatabaseHost: getEnv("DB_HOST", "localhost"),
		DatabasePort: getEnv("DB_PORT", "5432"),
		DatabaseUser: getEnv("DB_USER", "postgres"),
		DatabasePass: getEnv("DB_PASS", "postgrespassword"),
		DatabaseName: getEnv("DB_NAME", "scorequorum_db"),
	}
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePass,
		c.DatabaseName,
	)
}

// MaskedDSN returns the DSN with the password hidden, for startup logs.
func (c *Config) MaskedDSN() string {
	dsn := c.GetDSN()
	return strings.Replace(dsn, "password="+c.DatabasePass, "password=***", 1)
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.NodeName == "" {
		return fmt.Errorf("NODE_NAME is required")
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.DatabaseHost == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	return nil
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
