// Package search provides vector similarity retrieval over indexed source
// units, with a pgvector implementation for PostgreSQL and an in-memory
// implementation for SQLite.
package search

import (
	"math"
	"sort"

	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/domain/source"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical).
// Returns 0 if either vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, magA, magB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(magA) * math.Sqrt(magB))
}

// TopMatches scores units against the query embedding and returns those
// strictly above threshold, ordered by similarity descending with ties
// broken by path ascending, truncated to limit.
func TopMatches(query []float64, units []source.Unit, threshold float64, limit int) []search.Match {
	if len(units) == 0 || limit <= 0 {
		return []search.Match{}
	}

	matches := make([]search.Match, 0, len(units))
	for _, u := range units {
		similarity := CosineSimilarity(query, u.Embedding())
		if similarity <= threshold {
			continue
		}
		matches = append(matches, search.NewMatch(u.Path(), u.Content(), u.Summary(), similarity))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity() != matches[j].Similarity() {
			return matches[i].Similarity() > matches[j].Similarity()
		}
		return matches[i].Path() < matches[j].Path()
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	return matches[:limit]
}
