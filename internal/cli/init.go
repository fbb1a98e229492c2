// Package cli consolidates the initialization shared by cmd/chittrack and
// cmd/chittrack-worker.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"chittrack/internal/config"
	"chittrack/internal/log"
	"chittrack/internal/storage"
	"chittrack/internal/store"
	"chittrack/internal/store/firestore"
	"chittrack/internal/store/memory"
)

// SetupLogger builds the process logger and installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.DefaultConfig()).WithComponent(component)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenCache opens the local SQLite cache or exits the process on failure.
func OpenCache(logger *log.Logger, dbPath string) *storage.Cache {
	cache, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("failed to open local cache", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return cache
}

// BuildStore selects the snapshot store backend from the configuration.
func BuildStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		return firestore.New(ctx, firestore.Options{
			ProjectID:    cfg.FirestoreProject,
			Database:     cfg.FirestoreDatabase,
			DocID:        cfg.GroupDocID,
			APIKey:       cfg.FirestoreAPIKey,
			PollInterval: cfg.PollInterval,
		}, logger)
	default:
		logger.Info("using in-process snapshot store", "backend", cfg.StoreBackend)
		return memory.New(), nil
	}
}
