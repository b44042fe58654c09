package provider

import (
	"context"

	"github.com/neuronhq/neuron/domain/search"
)

// SearchEmbedder adapts a provider Embedder to the domain embedding contract.
type SearchEmbedder struct {
	embedder Embedder
}

// NewSearchEmbedder creates a new SearchEmbedder.
func NewSearchEmbedder(embedder Embedder) SearchEmbedder {
	return SearchEmbedder{embedder: embedder}
}

// Embed converts texts into embedding vectors.
func (s SearchEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := s.embedder.Embed(ctx, NewEmbeddingRequest(texts))
	if err != nil {
		return nil, err
	}
	return resp.Embeddings(), nil
}

// Ensure SearchEmbedder implements search.Embedder.
var _ search.Embedder = SearchEmbedder{}
