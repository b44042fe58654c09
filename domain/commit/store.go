package commit

import (
	"context"

	"github.com/neuronhq/neuron/domain/store"
)

// Store defines persistence operations for commit records.
type Store interface {
	// SaveAll persists records, ignoring rows whose (project_id, commit_sha)
	// already exists. Returns the number of rows actually inserted.
	SaveAll(ctx context.Context, records []Record) (int, error)

	// Find retrieves records matching the given options.
	Find(ctx context.Context, options ...store.Option) ([]Record, error)

	// SHAs returns the commit SHAs already stored for a project.
	SHAs(ctx context.Context, projectID int64) ([]string, error)

	// DeleteBy removes records matching the given options.
	DeleteBy(ctx context.Context, options ...store.Option) error
}
