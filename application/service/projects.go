package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/store"
	"github.com/neuronhq/neuron/internal/database"
	"github.com/neuronhq/neuron/internal/log"
)

// Projects manages the project lifecycle and drives indexing and commit
// polling for each project.
type Projects struct {
	projects project.Store
	commits  commit.Store
	indexer  *Indexer
	poller   *CommitPoller
	logger   *log.Logger

	wg sync.WaitGroup
}

// NewProjects creates a new Projects service.
func NewProjects(
	projects project.Store,
	commits commit.Store,
	indexer *Indexer,
	poller *CommitPoller,
	logger *log.Logger,
) *Projects {
	if logger == nil {
		logger = log.Default()
	}
	return &Projects{
		projects: projects,
		commits:  commits,
		indexer:  indexer,
		poller:   poller,
		logger:   logger,
	}
}

// Create registers a repository as a project and starts indexing and commit
// polling in the background. The project is returned as soon as it is
// persisted; first results appear as the background work completes.
func (s *Projects) Create(ctx context.Context, name, repoURL, githubToken string) (project.Project, error) {
	p, err := project.NewProject(name, repoURL, githubToken)
	if err != nil {
		return project.Project{}, err
	}

	saved, err := s.projects.Save(ctx, p)
	if err != nil {
		return project.Project{}, fmt.Errorf("save project: %w", err)
	}

	// Background work outlives the request.
	bgCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.indexer.IndexProject(bgCtx, saved); err != nil {
			s.logger.Warn("background indexing failed",
				"project_id", saved.ID(), "error", err)
		}
		if _, err := s.poller.Poll(bgCtx, saved); err != nil {
			s.logger.Warn("background commit poll failed",
				"project_id", saved.ID(), "error", err)
		}
	}()

	return saved, nil
}

// Get returns a project by id. Archived projects are invisible here.
func (s *Projects) Get(ctx context.Context, id int64) (project.Project, error) {
	p, err := s.projects.FindOne(ctx, store.WithID(id), store.WithoutArchived())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return project.Project{}, ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

// List returns all non-archived projects.
func (s *Projects) List(ctx context.Context) ([]project.Project, error) {
	projects, err := s.projects.Find(ctx,
		store.WithoutArchived(),
		store.WithOrderDesc("created_at"),
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Archive soft-deletes a project. Its units, commits, and questions stay in
// the database; the project just stops appearing and being served.
func (s *Projects) Archive(ctx context.Context, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.projects.Save(ctx, p.Archive()); err != nil {
		return fmt.Errorf("archive project: %w", err)
	}

	s.logger.Info("archived project", "project_id", id)
	return nil
}

// Index re-indexes a project's repository synchronously.
func (s *Projects) Index(ctx context.Context, id int64) (IndexReport, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return IndexReport{}, err
	}
	return s.indexer.IndexProject(ctx, p)
}

// PollCommits ingests new commit history for a project synchronously.
// Returns the number of new records stored.
func (s *Projects) PollCommits(ctx context.Context, id int64) (int, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.poller.Poll(ctx, p)
}

// Commits returns a project's stored commit records, newest first.
func (s *Projects) Commits(ctx context.Context, id int64) ([]commit.Record, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	records, err := s.commits.Find(ctx,
		store.WithProjectID(id),
		store.WithOrderDesc("committed_at"),
	)
	if err != nil {
		return nil, fmt.Errorf("list commit records: %w", err)
	}
	return records, nil
}

// Wait blocks until all background indexing and polling goroutines finish.
func (s *Projects) Wait() {
	s.wg.Wait()
}
