// Package dto defines the request and response bodies of the v1 API.
package dto

import "time"

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	RepoURL     string `json:"repo_url"`
	GithubToken string `json:"github_token,omitempty"`
}

// ProjectResponse describes a project. The GitHub token never leaves the
// server.
type ProjectResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RepoURL   string    `json:"repo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectListResponse wraps a list of projects.
type ProjectListResponse struct {
	Data []ProjectResponse `json:"data"`
}

// IndexReportResponse describes the outcome of an indexing run.
type IndexReportResponse struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// DocumentResponse carries generated project documentation.
type DocumentResponse struct {
	Markdown string `json:"markdown"`
}

// ErrorBody builds a plain error response body.
func ErrorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
