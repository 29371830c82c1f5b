package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		_ = store.Close()
	}

	return store, cleanup
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Running migrations again against a current schema must be a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}

	var version int
	if err := store.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("Schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestModelArtifacts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	const key = "models/user/alice"

	// Missing key reports found=false with no error.
	_, found, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get on missing key failed: %v", err)
	}
	if found {
		t.Error("Get on missing key reported found=true")
	}

	if err := store.Put(ctx, key, []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, found, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || string(data) != "v1" {
		t.Errorf("Get = (%q, %v), want (%q, true)", data, found, "v1")
	}

	// Put on an existing key replaces the payload.
	if err := store.Put(ctx, key, []byte("v2")); err != nil {
		t.Fatalf("Second put failed: %v", err)
	}
	data, _, err = store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after replace failed: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("Get after replace = %q, want %q", data, "v2")
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, found, err = store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if found {
		t.Error("Artifact still present after delete")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("Delete on missing key failed: %v", err)
	}
}
