// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neuronhq/neuron"
	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/infrastructure/api/middleware"
	"github.com/neuronhq/neuron/infrastructure/api/v1/dto"
	"github.com/neuronhq/neuron/internal/log"
)

// ProjectsRouter handles project API endpoints.
type ProjectsRouter struct {
	client *neuron.Client
	logger *log.Logger
}

// NewProjectsRouter creates a new ProjectsRouter.
func NewProjectsRouter(client *neuron.Client) *ProjectsRouter {
	return &ProjectsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for project endpoints.
func (r *ProjectsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Archive)
	router.Post("/{id}/index", r.Index)
	router.Get("/{id}/commits", r.ListCommits)
	router.Post("/{id}/commits/poll", r.PollCommits)
	router.Post("/{id}/search", r.Search)
	router.Post("/{id}/ask", r.Ask)
	router.Get("/{id}/questions", r.ListQuestions)
	router.Get("/{id}/document", r.Document)

	return router
}

// List handles GET /api/v1/projects.
func (r *ProjectsRouter) List(w http.ResponseWriter, req *http.Request) {
	projects, err := r.client.Projects.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ProjectListResponse{
		Data: projectsToDTO(projects),
	})
}

// Create handles POST /api/v1/projects.
func (r *ProjectsRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.CreateProjectRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, dto.ErrorBody("invalid request body"))
		return
	}

	p, err := r.client.Projects.Create(req.Context(), body.Name, body.RepoURL, body.GithubToken)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, projectToDTO(p))
}

// Get handles GET /api/v1/projects/{id}.
func (r *ProjectsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	p, err := r.client.Projects.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, projectToDTO(p))
}

// Archive handles DELETE /api/v1/projects/{id}.
func (r *ProjectsRouter) Archive(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	if err := r.client.Projects.Archive(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Index handles POST /api/v1/projects/{id}/index.
func (r *ProjectsRouter) Index(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	report, err := r.client.Projects.Index(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.IndexReportResponse{
		Total:     report.Total(),
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
	})
}

// ListCommits handles GET /api/v1/projects/{id}/commits.
func (r *ProjectsRouter) ListCommits(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	records, err := r.client.Projects.Commits(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.CommitListResponse{
		Data: commitsToDTO(records),
	})
}

// PollCommits handles POST /api/v1/projects/{id}/commits/poll.
func (r *ProjectsRouter) PollCommits(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	inserted, err := r.client.Projects.PollCommits(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.PollResponse{New: inserted})
}

// Search handles POST /api/v1/projects/{id}/search.
func (r *ProjectsRouter) Search(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, dto.ErrorBody("invalid request body"))
		return
	}

	if _, err := r.client.Projects.Get(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	matches, err := r.client.Retrieval.Query(req.Context(), id, body.Query)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SearchResponse{
		Data: matchesToDTO(matches),
	})
}

// Ask handles POST /api/v1/projects/{id}/ask. The response is NDJSON: a
// references line, then answer chunks as they arrive, then a done line.
func (r *ProjectsRouter) Ask(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	var body dto.AskRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, dto.ErrorBody("invalid request body"))
		return
	}

	ctx := req.Context()
	p, err := r.client.Projects.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	stream, err := r.client.Answers.Ask(ctx, p, body.Question)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	references := stream.References()
	writeEvent(enc, flusher, dto.AskEvent{References: referencesToDTO(references)})

	var answer strings.Builder
	for chunk := range stream.Chunks() {
		answer.WriteString(chunk)
		writeEvent(enc, flusher, dto.AskEvent{Chunk: chunk})
	}

	if err := stream.Err(); err != nil {
		r.logger.Warn("ask stream failed", "project_id", id, "error", err)
		writeEvent(enc, flusher, dto.AskEvent{Error: "answer generation failed"})
		return
	}

	if body.Save {
		if _, err := r.client.Answers.SaveQuestion(ctx, id, body.Question, answer.String(), references); err != nil {
			r.logger.Warn("failed to save question", "project_id", id, "error", err)
		}
	}

	writeEvent(enc, flusher, dto.AskEvent{Done: true})
}

// ListQuestions handles GET /api/v1/projects/{id}/questions.
func (r *ProjectsRouter) ListQuestions(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	if _, err := r.client.Projects.Get(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	questions, err := r.client.Answers.Questions(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionListResponse{
		Data: questionsToDTO(questions),
	})
}

// Document handles GET /api/v1/projects/{id}/document.
func (r *ProjectsRouter) Document(w http.ResponseWriter, req *http.Request) {
	id, ok := projectID(w, req)
	if !ok {
		return
	}

	p, err := r.client.Projects.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	markdown, err := r.client.Answers.Document(req.Context(), p)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.DocumentResponse{Markdown: markdown})
}

// projectID parses the {id} path parameter, writing a 400 on failure.
func projectID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, dto.ErrorBody("invalid project id"))
		return 0, false
	}
	return id, true
}

func writeEvent(enc *json.Encoder, flusher http.Flusher, event dto.AskEvent) {
	_ = enc.Encode(event)
	if flusher != nil {
		flusher.Flush()
	}
}

func projectToDTO(p project.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:        p.ID(),
		Name:      p.Name(),
		RepoURL:   p.RepoURL(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func projectsToDTO(projects []project.Project) []dto.ProjectResponse {
	out := make([]dto.ProjectResponse, len(projects))
	for i, p := range projects {
		out[i] = projectToDTO(p)
	}
	return out
}

func commitsToDTO(records []commit.Record) []dto.CommitResponse {
	out := make([]dto.CommitResponse, len(records))
	for i, r := range records {
		out[i] = dto.CommitResponse{
			SHA:             r.SHA(),
			ShortSHA:        r.ShortSHA(),
			Message:         r.Message(),
			AuthorName:      r.AuthorName(),
			AuthorAvatarURL: r.AuthorAvatarURL(),
			CommittedAt:     r.CommittedAt(),
			Summary:         r.Summary(),
		}
	}
	return out
}

func matchesToDTO(matches []search.Match) []dto.MatchResponse {
	out := make([]dto.MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = dto.MatchResponse{
			Path:       m.Path(),
			Summary:    m.Summary(),
			Similarity: m.Similarity(),
		}
	}
	return out
}

func referencesToDTO(refs []project.FileReference) []dto.MatchResponse {
	out := make([]dto.MatchResponse, len(refs))
	for i, r := range refs {
		out[i] = dto.MatchResponse{
			Path:       r.Path(),
			Summary:    r.Summary(),
			Similarity: r.Similarity(),
		}
	}
	return out
}

func questionsToDTO(questions []project.Question) []dto.QuestionResponse {
	out := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		out[i] = dto.QuestionResponse{
			ID:         q.ID().String(),
			Question:   q.Text(),
			Answer:     q.Answer(),
			References: referencesToDTO(q.References()),
			CreatedAt:  q.CreatedAt(),
		}
	}
	return out
}
