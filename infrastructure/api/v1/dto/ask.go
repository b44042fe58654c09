package dto

import "time"

// AskRequest is the body of POST /projects/{id}/ask. When Save is set the
// completed answer is stored as a question.
type AskRequest struct {
	Question string `json:"question"`
	Save     bool   `json:"save,omitempty"`
}

// SearchRequest is the body of POST /projects/{id}/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// MatchResponse describes one retrieval match.
type MatchResponse struct {
	Path       string  `json:"path"`
	Summary    string  `json:"summary"`
	Similarity float64 `json:"similarity"`
}

// SearchResponse wraps retrieval matches.
type SearchResponse struct {
	Data []MatchResponse `json:"data"`
}

// AskEvent is one NDJSON line of the streaming ask response. The first line
// carries the references, subsequent lines carry answer chunks, and the last
// line has Done set.
type AskEvent struct {
	References []MatchResponse `json:"references,omitempty"`
	Chunk      string          `json:"chunk,omitempty"`
	Done       bool            `json:"done,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// QuestionResponse describes a saved question.
type QuestionResponse struct {
	ID         string          `json:"id"`
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	References []MatchResponse `json:"references"`
	CreatedAt  time.Time       `json:"created_at"`
}

// QuestionListResponse wraps a list of saved questions.
type QuestionListResponse struct {
	Data []QuestionResponse `json:"data"`
}
