package search

import "context"

// Match is a retrieval result: a source unit with its similarity to the query.
// Matches live for a single request and are never persisted.
type Match struct {
	path       string
	content    string
	summary    string
	similarity float64
}

// NewMatch creates a Match.
func NewMatch(path, content, summary string, similarity float64) Match {
	return Match{
		path:       path,
		content:    content,
		summary:    summary,
		similarity: similarity,
	}
}

// Path returns the file path.
func (m Match) Path() string { return m.path }

// Content returns the source text.
func (m Match) Content() string { return m.content }

// Summary returns the unit summary.
func (m Match) Summary() string { return m.summary }

// Similarity returns the cosine similarity score in [0, 1].
func (m Match) Similarity() float64 { return m.similarity }

// Searcher performs vector similarity search over a project's indexed units.
// Results are ordered by similarity descending, ties broken by path ascending,
// and never include matches at or below the threshold.
type Searcher interface {
	Search(ctx context.Context, projectID int64, embedding []float64, threshold float64, limit int) ([]Match, error)
}
