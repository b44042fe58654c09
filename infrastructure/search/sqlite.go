package search

import (
	"context"
	"fmt"

	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/domain/store"
)

// SQLiteSearcher implements search.Searcher for SQLite. Embeddings are
// stored as JSON, so similarity is computed in memory over the project's
// units. Acceptable at single-project scale; Postgres handles the rest.
type SQLiteSearcher struct {
	units source.UnitStore
}

// NewSQLiteSearcher creates a new SQLiteSearcher.
func NewSQLiteSearcher(units source.UnitStore) SQLiteSearcher {
	return SQLiteSearcher{units: units}
}

// Search performs in-memory cosine similarity search over a project's units.
func (s SQLiteSearcher) Search(ctx context.Context, projectID int64, embedding []float64, threshold float64, limit int) ([]search.Match, error) {
	if len(embedding) == 0 {
		return []search.Match{}, nil
	}

	units, err := s.units.Find(ctx, store.WithProjectID(projectID))
	if err != nil {
		return nil, fmt.Errorf("load source units: %w", err)
	}

	return TopMatches(embedding, units, threshold, limit), nil
}

// Ensure SQLiteSearcher implements search.Searcher.
var _ search.Searcher = SQLiteSearcher{}
