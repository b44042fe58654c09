package search

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/internal/database"
)

// PostgresSearcher implements search.Searcher using the pgvector cosine
// distance operator, so ranking happens inside the database.
type PostgresSearcher struct {
	db database.Database
}

// NewPostgresSearcher creates a new PostgresSearcher.
func NewPostgresSearcher(db database.Database) PostgresSearcher {
	return PostgresSearcher{db: db}
}

// Search performs a pgvector cosine similarity search over a project's units.
// The similarity expression is repeated in the WHERE clause because PostgreSQL
// does not allow SELECT aliases there.
func (s PostgresSearcher) Search(ctx context.Context, projectID int64, embedding []float64, threshold float64, limit int) ([]search.Match, error) {
	if len(embedding) == 0 {
		return []search.Match{}, nil
	}

	queryVector := database.NewPgVector(embedding).String()

	var rows []vectorSearchRow
	tx := vectorSearchQuery(s.db.Session(ctx), projectID, queryVector, threshold, limit)
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	matches := make([]search.Match, len(rows))
	for i, row := range rows {
		matches[i] = search.NewMatch(row.FilePath, row.Content, row.Summary, row.Similarity)
	}
	return matches, nil
}

type vectorSearchRow struct {
	FilePath   string  `gorm:"column:file_path"`
	Content    string  `gorm:"column:content"`
	Summary    string  `gorm:"column:summary"`
	Similarity float64 `gorm:"column:similarity"`
}

// vectorSearchQuery builds the ranked similarity query. The query vector
// arrives as a text parameter under the extended protocol, so it must be cast
// to vector before the distance operator applies.
func vectorSearchQuery(db *gorm.DB, projectID int64, queryVector string, threshold float64, limit int) *gorm.DB {
	return db.Table("source_units").
		Select("file_path, content, summary, 1 - (embedding <=> ?::vector) AS similarity", queryVector).
		Where("project_id = ?", projectID).
		Where("1 - (embedding <=> ?::vector) > ?", queryVector, threshold).
		Order("similarity DESC, file_path ASC").
		Limit(limit)
}

// NewSearcher creates the search.Searcher for the database backend.
func NewSearcher(db database.Database, units source.UnitStore) search.Searcher {
	if db.IsPostgres() {
		return NewPostgresSearcher(db)
	}
	return NewSQLiteSearcher(units)
}

// Ensure PostgresSearcher implements search.Searcher.
var _ search.Searcher = PostgresSearcher{}
