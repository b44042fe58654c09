// Package testdb opens throwaway in-memory databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/neuronhq/neuron/infrastructure/persistence"
	"github.com/neuronhq/neuron/internal/database"
)

// New opens an in-memory SQLite database with the full schema migrated.
// The database is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()

	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb: auto migrate: %v", err)
	}
	return db
}
