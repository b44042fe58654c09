package dto

import "time"

// CommitResponse describes a stored commit record.
type CommitResponse struct {
	SHA             string    `json:"sha"`
	ShortSHA        string    `json:"short_sha"`
	Message         string    `json:"message"`
	AuthorName      string    `json:"author_name"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	CommittedAt     time.Time `json:"committed_at"`
	Summary         string    `json:"summary"`
}

// CommitListResponse wraps a list of commit records.
type CommitListResponse struct {
	Data []CommitResponse `json:"data"`
}

// PollResponse reports how many new commits a poll ingested.
type PollResponse struct {
	New int `json:"new"`
}
