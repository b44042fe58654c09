package project

import (
	"time"

	"github.com/google/uuid"
)

// FileReference is a source file that grounded an answer.
type FileReference struct {
	path       string
	summary    string
	similarity float64
}

// NewFileReference creates a FileReference.
func NewFileReference(path, summary string, similarity float64) FileReference {
	return FileReference{
		path:       path,
		summary:    summary,
		similarity: similarity,
	}
}

// Path returns the file path.
func (f FileReference) Path() string { return f.path }

// Summary returns the file summary.
func (f FileReference) Summary() string { return f.summary }

// Similarity returns the retrieval similarity score.
func (f FileReference) Similarity() float64 { return f.similarity }

// Question is an answered question saved against a project.
type Question struct {
	id         uuid.UUID
	projectID  int64
	question   string
	answer     string
	references []FileReference
	createdAt  time.Time
}

// NewQuestion creates a saved Question with a fresh identifier.
func NewQuestion(projectID int64, question, answer string, references []FileReference) Question {
	refs := make([]FileReference, len(references))
	copy(refs, references)
	return Question{
		id:         uuid.New(),
		projectID:  projectID,
		question:   question,
		answer:     answer,
		references: refs,
		createdAt:  time.Now(),
	}
}

// ReconstructQuestion rebuilds a Question from persisted state.
func ReconstructQuestion(
	id uuid.UUID,
	projectID int64,
	question string,
	answer string,
	references []FileReference,
	createdAt time.Time,
) Question {
	refs := make([]FileReference, len(references))
	copy(refs, references)
	return Question{
		id:         id,
		projectID:  projectID,
		question:   question,
		answer:     answer,
		references: refs,
		createdAt:  createdAt,
	}
}

// ID returns the question identifier.
func (q Question) ID() uuid.UUID { return q.id }

// ProjectID returns the owning project identifier.
func (q Question) ProjectID() int64 { return q.projectID }

// Text returns the question text.
func (q Question) Text() string { return q.question }

// Answer returns the answer text.
func (q Question) Answer() string { return q.answer }

// References returns the file references that grounded the answer.
func (q Question) References() []FileReference {
	refs := make([]FileReference, len(q.references))
	copy(refs, q.references)
	return refs
}

// CreatedAt returns the creation timestamp.
func (q Question) CreatedAt() time.Time { return q.createdAt }
