package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronhq/neuron/domain/search"
)

// fakeSearcher returns canned matches and records the query it was given.
type fakeSearcher struct {
	matches       []search.Match
	err           error
	lastProjectID int64
	lastEmbedding []float64
	lastThreshold float64
	lastLimit     int
}

func (f *fakeSearcher) Search(ctx context.Context, projectID int64, embedding []float64, threshold float64, limit int) ([]search.Match, error) {
	f.lastProjectID = projectID
	f.lastEmbedding = embedding
	f.lastThreshold = threshold
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func TestRetrieval_Query(t *testing.T) {
	searcher := &fakeSearcher{matches: []search.Match{
		search.NewMatch("main.go", "package main", "entry point", 0.9),
	}}
	retrieval := NewRetrieval(&fakeEmbedder{}, searcher, 0.5, 10, nil)

	matches, err := retrieval.Query(context.Background(), 7, "what does main do?")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "main.go", matches[0].Path())

	assert.Equal(t, int64(7), searcher.lastProjectID)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, searcher.lastEmbedding)
	assert.Equal(t, 0.5, searcher.lastThreshold)
	assert.Equal(t, 10, searcher.lastLimit)
}

func TestRetrieval_EmptyQuestion(t *testing.T) {
	retrieval := NewRetrieval(&fakeEmbedder{}, &fakeSearcher{}, 0.5, 10, nil)

	_, err := retrieval.Query(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestRetrieval_EmbedFailureDegradesToEmpty(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("provider down")}
	searcher := &fakeSearcher{matches: []search.Match{
		search.NewMatch("main.go", "package main", "entry point", 0.9),
	}}
	retrieval := NewRetrieval(emb, searcher, 0.5, 10, nil)

	matches, err := retrieval.Query(context.Background(), 1, "anything?")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Zero(t, searcher.lastLimit, "search must be skipped when embedding fails")
}

func TestRetrieval_EmbedFailureWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emb := &fakeEmbedder{err: context.Canceled}
	retrieval := NewRetrieval(emb, &fakeSearcher{}, 0.5, 10, nil)

	_, err := retrieval.Query(ctx, 1, "anything?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrieval_SearchFailureFails(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("db gone")}
	retrieval := NewRetrieval(&fakeEmbedder{}, searcher, 0.5, 10, nil)

	_, err := retrieval.Query(context.Background(), 1, "anything?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search units")
}
