package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"spendsense/internal/config"
	"spendsense/internal/engine"
	"spendsense/internal/storage"
)

// initStorage opens the SQLite database and applies pending migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine wires storage, blob store, and embedder into a prediction
// engine. The SQLite store doubles as the model-artifact blob store.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := engine.DefaultConfig()
	if threshold := viper.GetFloat64("prediction.confidence_threshold"); threshold > 0 {
		cfg.ConfidenceThreshold = threshold
	}
	if seed := viper.GetInt64("prediction.seed"); seed != 0 {
		cfg.Seed = seed
	}

	eng := engine.NewWithConfig(store, store, config.NewEmbedder(), cfg)
	return eng, store, nil
}

// requireUser resolves the acting user id from flag or config.
func requireUser() (string, error) {
	userID := viper.GetString("user")
	if userID == "" {
		return "", fmt.Errorf("a user id is required: pass --user or set user in config")
	}
	return userID, nil
}
