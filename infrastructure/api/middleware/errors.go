package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/neuronhq/neuron/application/service"
	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/infrastructure/github"
	"github.com/neuronhq/neuron/internal/database"
	"github.com/neuronhq/neuron/internal/log"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError maps an error to a status code and writes the JSON error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *log.Logger) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, database.ErrNotFound),
		errors.Is(err, github.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, service.ErrProjectNotIndexed),
		errors.Is(err, project.ErrEmptyName),
		errors.Is(err, project.ErrEmptyRepoURL),
		errors.Is(err, source.ErrEmptyPath),
		errors.Is(err, github.ErrInvalidRepoURL):
		status = http.StatusBadRequest
	case errors.Is(err, github.ErrRateLimited):
		status = http.StatusTooManyRequests
	}

	requestID := middleware.GetReqID(r.Context())

	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("request error",
			"request_id", requestID,
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	WriteJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		RequestID: requestID,
	})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
