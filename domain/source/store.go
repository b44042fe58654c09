package source

import (
	"context"

	"github.com/neuronhq/neuron/domain/store"
)

// UnitStore defines persistence operations for indexed source units.
type UnitStore interface {
	// Upsert creates or replaces a unit keyed on (project_id, file_path).
	Upsert(ctx context.Context, unit Unit) (Unit, error)

	// Find retrieves units matching the given options.
	Find(ctx context.Context, options ...store.Option) ([]Unit, error)

	// FindOne retrieves a single unit matching the given options.
	FindOne(ctx context.Context, options ...store.Option) (Unit, error)

	// Paths returns the distinct file paths stored for a project.
	Paths(ctx context.Context, projectID int64) ([]string, error)

	// DeleteBy removes units matching the given options.
	DeleteBy(ctx context.Context, options ...store.Option) error
}
