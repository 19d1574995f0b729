// Package cli provides common initialization for the spendtrack
// command: logging, env loading, configuration and the local store.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"spendtrack/internal/config"
	"spendtrack/internal/log"
	"spendtrack/internal/store"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the local SQLite store at the configured path.
// Returns the store or exits the process on failure.
func OpenStore(logger *log.Logger, dbPath string) *store.Store {
	st, err := store.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open local store", log.FieldError, err, log.FieldPath, dbPath)
		os.Exit(1)
	}
	return st
}
