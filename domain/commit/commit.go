// Package commit defines ingested commit history records.
package commit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptySHA indicates a record without a commit SHA.
var ErrEmptySHA = errors.New("commit sha is empty")

// Record is a summarized commit belonging to a project. The (project, SHA)
// pair is the idempotency key: re-ingesting unchanged history is a no-op.
type Record struct {
	id              uuid.UUID
	projectID       int64
	sha             string
	message         string
	authorName      string
	authorAvatarURL string
	committedAt     time.Time
	summary         string
	createdAt       time.Time
}

// NewRecord creates a commit Record with a fresh identifier.
func NewRecord(
	projectID int64,
	sha string,
	message string,
	authorName string,
	authorAvatarURL string,
	committedAt time.Time,
	summary string,
) (Record, error) {
	if sha == "" {
		return Record{}, ErrEmptySHA
	}
	return Record{
		id:              uuid.New(),
		projectID:       projectID,
		sha:             sha,
		message:         message,
		authorName:      authorName,
		authorAvatarURL: authorAvatarURL,
		committedAt:     committedAt,
		summary:         summary,
		createdAt:       time.Now(),
	}, nil
}

// ReconstructRecord rebuilds a Record from persisted state.
func ReconstructRecord(
	id uuid.UUID,
	projectID int64,
	sha string,
	message string,
	authorName string,
	authorAvatarURL string,
	committedAt time.Time,
	summary string,
	createdAt time.Time,
) Record {
	return Record{
		id:              id,
		projectID:       projectID,
		sha:             sha,
		message:         message,
		authorName:      authorName,
		authorAvatarURL: authorAvatarURL,
		committedAt:     committedAt,
		summary:         summary,
		createdAt:       createdAt,
	}
}

// ID returns the record identifier.
func (r Record) ID() uuid.UUID { return r.id }

// ProjectID returns the owning project identifier.
func (r Record) ProjectID() int64 { return r.projectID }

// SHA returns the commit SHA.
func (r Record) SHA() string { return r.sha }

// ShortSHA returns the abbreviated commit SHA.
func (r Record) ShortSHA() string {
	if len(r.sha) <= 7 {
		return r.sha
	}
	return r.sha[:7]
}

// Message returns the commit message.
func (r Record) Message() string { return r.message }

// AuthorName returns the commit author name.
func (r Record) AuthorName() string { return r.authorName }

// AuthorAvatarURL returns the author avatar URL.
func (r Record) AuthorAvatarURL() string { return r.authorAvatarURL }

// CommittedAt returns the author date of the commit.
func (r Record) CommittedAt() time.Time { return r.committedAt }

// Summary returns the generated diff summary.
func (r Record) Summary() string { return r.summary }

// CreatedAt returns the ingestion timestamp.
func (r Record) CreatedAt() time.Time { return r.createdAt }
