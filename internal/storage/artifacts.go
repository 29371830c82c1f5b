package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Get returns a model artifact blob by key. A missing key is reported via the
// found flag, not an error.
func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, false, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM model_artifacts WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}

	return data, true, nil
}

// Put stores a model artifact blob, replacing any previous value.
func (s *SQLiteStorage) Put(ctx context.Context, key string, data []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: data", ErrNilParameter)
	}

	query := `
		INSERT INTO model_artifacts (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", key, err)
	}

	return nil
}

// Delete removes a model artifact. Deleting a missing key is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM model_artifacts WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", key, err)
	}

	return nil
}
