package service

import (
	"context"
	"fmt"

	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/internal/log"
)

// Retrieval finds the source units most relevant to a question.
type Retrieval struct {
	embedder  search.Embedder
	searcher  search.Searcher
	threshold float64
	limit     int
	logger    *log.Logger
}

// NewRetrieval creates a new Retrieval.
func NewRetrieval(
	embedder search.Embedder,
	searcher search.Searcher,
	threshold float64,
	limit int,
	logger *log.Logger,
) *Retrieval {
	if logger == nil {
		logger = log.Default()
	}
	return &Retrieval{
		embedder:  embedder,
		searcher:  searcher,
		threshold: threshold,
		limit:     limit,
		logger:    logger,
	}
}

// Query embeds the question and returns the most similar units of the
// project. A failed question embedding degrades to an empty result; an
// answer built from nothing is still better than a dead endpoint.
func (s *Retrieval) Query(ctx context.Context, projectID int64, question string) ([]search.Match, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("failed to embed question", "project_id", projectID, "error", err)
		return []search.Match{}, nil
	}
	if len(vectors) != 1 {
		return []search.Match{}, nil
	}

	matches, err := s.searcher.Search(ctx, projectID, vectors[0], s.threshold, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search units: %w", err)
	}

	s.logger.Debug("retrieved matches", "project_id", projectID, "count", len(matches))
	return matches, nil
}
