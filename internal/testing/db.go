// Package testing provides testing utilities and helpers for the pricesync project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/pricesync/internal/database"
)

// NewTestDB creates a migrated pricesync database in a temporary directory.
// The database is closed when the test ends.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "pricesync.db"),
		Name: "pricesync",
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			// Log error but don't fail test
			t.Logf("Warning: Failed to close test database: %v", err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}
