// Package source defines repository file snapshots and their indexed units.
package source

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyPath indicates a document or unit without a file path.
var ErrEmptyPath = errors.New("source path is empty")

// Document is a single file fetched from a repository snapshot. Documents are
// ephemeral pipeline inputs; SourceUnit is what gets persisted.
type Document struct {
	path    string
	content string
}

// NewDocument creates a Document.
func NewDocument(path, content string) Document {
	return Document{path: path, content: content}
}

// Path returns the repository-relative file path.
func (d Document) Path() string { return d.path }

// Content returns the file content.
func (d Document) Content() string { return d.content }

// Unit is an indexed source file: content, summary, and embedding. A persisted
// unit always carries a non-empty summary and embedding; units that failed
// either stage are never stored.
type Unit struct {
	id        uuid.UUID
	projectID int64
	path      string
	content   string
	summary   string
	embedding []float64
	createdAt time.Time
	updatedAt time.Time
}

// NewUnit creates a fully indexed Unit with a fresh identifier.
func NewUnit(projectID int64, path, content, summary string, embedding []float64) (Unit, error) {
	if path == "" {
		return Unit{}, ErrEmptyPath
	}

	vec := make([]float64, len(embedding))
	copy(vec, embedding)

	now := time.Now()
	return Unit{
		id:        uuid.New(),
		projectID: projectID,
		path:      path,
		content:   content,
		summary:   summary,
		embedding: vec,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUnit rebuilds a Unit from persisted state.
func ReconstructUnit(
	id uuid.UUID,
	projectID int64,
	path string,
	content string,
	summary string,
	embedding []float64,
	createdAt time.Time,
	updatedAt time.Time,
) Unit {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	return Unit{
		id:        id,
		projectID: projectID,
		path:      path,
		content:   content,
		summary:   summary,
		embedding: vec,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the unit identifier.
func (u Unit) ID() uuid.UUID { return u.id }

// ProjectID returns the owning project identifier.
func (u Unit) ProjectID() int64 { return u.projectID }

// Path returns the repository-relative file path.
func (u Unit) Path() string { return u.path }

// Content returns the source text.
func (u Unit) Content() string { return u.content }

// Summary returns the generated summary.
func (u Unit) Summary() string { return u.summary }

// Embedding returns a defensive copy of the summary embedding.
func (u Unit) Embedding() []float64 {
	vec := make([]float64, len(u.embedding))
	copy(vec, u.embedding)
	return vec
}

// IsIndexed returns true if the unit has both a summary and an embedding.
func (u Unit) IsIndexed() bool {
	return u.summary != "" && len(u.embedding) > 0
}

// CreatedAt returns the creation timestamp.
func (u Unit) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last update timestamp.
func (u Unit) UpdatedAt() time.Time { return u.updatedAt }
