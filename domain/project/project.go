// Package project defines linked GitHub repositories and the questions asked
// against them.
package project

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrEmptyName    = errors.New("project name is empty")
	ErrEmptyRepoURL = errors.New("project repository URL is empty")
)

// Project is a linked GitHub repository whose contents and commit history are
// indexed for retrieval.
type Project struct {
	id          int64
	name        string
	repoURL     string
	githubToken string
	createdAt   time.Time
	updatedAt   time.Time
	archivedAt  *time.Time
}

// NewProject creates a new Project. The token is optional and used for
// private repositories.
func NewProject(name, repoURL, githubToken string) (Project, error) {
	name = strings.TrimSpace(name)
	repoURL = strings.TrimSpace(repoURL)

	if name == "" {
		return Project{}, ErrEmptyName
	}
	if repoURL == "" {
		return Project{}, ErrEmptyRepoURL
	}

	now := time.Now()
	return Project{
		name:        name,
		repoURL:     repoURL,
		githubToken: githubToken,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructProject rebuilds a Project from persisted state.
func ReconstructProject(
	id int64,
	name string,
	repoURL string,
	githubToken string,
	createdAt time.Time,
	updatedAt time.Time,
	archivedAt *time.Time,
) Project {
	return Project{
		id:          id,
		name:        name,
		repoURL:     repoURL,
		githubToken: githubToken,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		archivedAt:  archivedAt,
	}
}

// ID returns the project identifier.
func (p Project) ID() int64 { return p.id }

// Name returns the project name.
func (p Project) Name() string { return p.name }

// RepoURL returns the GitHub repository URL.
func (p Project) RepoURL() string { return p.repoURL }

// GithubToken returns the access token, possibly empty.
func (p Project) GithubToken() string { return p.githubToken }

// CreatedAt returns the creation timestamp.
func (p Project) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last update timestamp.
func (p Project) UpdatedAt() time.Time { return p.updatedAt }

// ArchivedAt returns the archival timestamp, or nil for active projects.
func (p Project) ArchivedAt() *time.Time {
	if p.archivedAt == nil {
		return nil
	}
	t := *p.archivedAt
	return &t
}

// IsArchived returns true if the project has been archived.
func (p Project) IsArchived() bool {
	return p.archivedAt != nil
}

// Archive returns a copy of the project marked as archived. Archiving an
// already archived project keeps the original timestamp.
func (p Project) Archive() Project {
	if p.archivedAt != nil {
		return p
	}
	now := time.Now()
	p.archivedAt = &now
	p.updatedAt = now
	return p
}
