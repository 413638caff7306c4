package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port             string
	CORSAllowOrigins string

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string

	// Token configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Import queue configuration
	ImportQueue        string
	ImportInProcess    bool // run import workers inside the API process
	ImportWorkers      int
	ImportMaxAttempts  int
	ImportBackoff      time.Duration
	ImportPollInterval time.Duration

	// Running jobs reserved longer than this are reclaimed; 0 disables
	ImportVisibilityTimeout time.Duration

	// MaxIndexDepth bounds the nesting accepted for index trees
	MaxIndexDepth int

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "3000"),
		CORSAllowOrigins:        getEnv("CORS_ALLOW_ORIGINS", "*"),
		DBType:                  getEnv("DB_TYPE", "mysql"),
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "3306"),
		DBDatabase:              getEnv("DB_DATABASE", ""),
		DBUser:                  getEnv("DB_USER", ""),
		DBPassword:              getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:       getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:              getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		TokenTTL:                getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		ImportQueue:             getEnv("IMPORT_QUEUE", "imports"),
		ImportInProcess:         getEnvAsBool("IMPORT_IN_PROCESS", true),
		ImportWorkers:           getEnvAsInt("IMPORT_WORKERS", 2),
		ImportMaxAttempts:       getEnvAsInt("IMPORT_MAX_ATTEMPTS", 3),
		ImportBackoff:           getEnvAsDuration("IMPORT_BACKOFF", 10*time.Second),
		ImportPollInterval:      getEnvAsDuration("IMPORT_POLL_INTERVAL", time.Second),
		ImportVisibilityTimeout: getEnvAsDuration("IMPORT_VISIBILITY_TIMEOUT", 15*time.Minute),
		MaxIndexDepth:           getEnvAsInt("MAX_INDEX_DEPTH", 64),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and bounds
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBUser == "" && cfg.DBType != "sqlite" && cfg.DBType != "sqlite-pure" {
		return fmt.Errorf("DB_USER is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ImportWorkers < 1 {
		return fmt.Errorf("IMPORT_WORKERS must be at least 1")
	}
	if cfg.ImportMaxAttempts < 1 {
		return fmt.Errorf("IMPORT_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.MaxIndexDepth < 1 {
		return fmt.Errorf("MAX_INDEX_DEPTH must be at least 1")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool accepts the strconv.ParseBool spellings
func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses values like "30s" or "5m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
