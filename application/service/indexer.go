// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/domain/service"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/domain/store"
	"github.com/neuronhq/neuron/internal/config"
	"github.com/neuronhq/neuron/internal/log"
)

// SnapshotSource fetches the indexable files of a repository. A non-empty
// token authenticates the fetch.
type SnapshotSource interface {
	Fetch(ctx context.Context, repoURL, token string) ([]source.Document, error)
}

// IndexReport summarizes an indexing run. A run where some units failed is
// still a successful run; failures are per-file, never per-project.
type IndexReport struct {
	total     int
	succeeded int
	failed    int
}

// NewIndexReport creates an IndexReport.
func NewIndexReport(total, succeeded, failed int) IndexReport {
	return IndexReport{total: total, succeeded: succeeded, failed: failed}
}

// Total returns the number of files fetched from the snapshot.
func (r IndexReport) Total() int { return r.total }

// Succeeded returns the number of units persisted.
func (r IndexReport) Succeeded() int { return r.succeeded }

// Failed returns the number of files dropped by embedding or persistence
// failures.
func (r IndexReport) Failed() int { return r.failed }

// Indexer turns repository snapshots into persisted, searchable source units.
//
// The pipeline runs in two phases: summarize and embed in batches with a
// pause between them to stay under provider rate limits, then persist in
// smaller batches. Individual file failures are logged and counted, never
// fatal; only context cancellation aborts a run.
type Indexer struct {
	snapshots  SnapshotSource
	summarizer service.Summarizer
	embedder   search.Embedder
	units      source.UnitStore
	cfg        config.IndexingConfig
	logger     *log.Logger
}

// NewIndexer creates a new Indexer.
func NewIndexer(
	snapshots SnapshotSource,
	summarizer service.Summarizer,
	embedder search.Embedder,
	units source.UnitStore,
	cfg config.IndexingConfig,
	logger *log.Logger,
) *Indexer {
	if logger == nil {
		logger = log.Default()
	}
	return &Indexer{
		snapshots:  snapshots,
		summarizer: summarizer,
		embedder:   embedder,
		units:      units,
		cfg:        cfg,
		logger:     logger,
	}
}

// IndexProject fetches a snapshot of the project's repository and indexes
// every file in it. Units are upserted on (project, path), so re-indexing
// replaces content in place; paths that disappeared from the repository are
// deleted afterwards.
func (s *Indexer) IndexProject(ctx context.Context, p project.Project) (IndexReport, error) {
	docs, err := s.snapshots.Fetch(ctx, p.RepoURL(), p.GithubToken())
	if err != nil {
		return IndexReport{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	s.logger.Info("indexing project",
		"project_id", p.ID(), "repo", p.RepoURL(), "files", len(docs))

	var indexed []source.Unit
	for start := 0; start < len(docs); start += s.cfg.BatchSize() {
		end := min(start+s.cfg.BatchSize(), len(docs))

		if start > 0 {
			if err := sleepCtx(ctx, s.cfg.BatchDelay()); err != nil {
				return IndexReport{}, err
			}
		}

		units, err := s.indexBatch(ctx, p.ID(), docs[start:end])
		if err != nil {
			return IndexReport{}, err
		}
		indexed = append(indexed, units...)
	}

	persisted, err := s.persist(ctx, indexed)
	if err != nil {
		return IndexReport{}, err
	}

	if err := s.deleteStale(ctx, p.ID(), docs); err != nil {
		return IndexReport{}, err
	}

	report := NewIndexReport(len(docs), persisted, len(docs)-persisted)
	s.logger.Info("indexed project",
		"project_id", p.ID(), "total", report.Total(),
		"succeeded", report.Succeeded(), "failed", report.Failed())
	return report, nil
}

// indexBatch summarizes and embeds one batch of documents concurrently.
// Fan-out is bounded by the batch size; every document gets its own timeout.
// Workers never return an error, so a failed document leaves a gap in the
// results while the rest of the batch completes.
func (s *Indexer) indexBatch(ctx context.Context, projectID int64, docs []source.Document) ([]source.Unit, error) {
	units := make([]source.Unit, len(docs))
	done := make([]bool, len(docs))

	var g errgroup.Group
	for i, doc := range docs {
		g.Go(func() error {
			unit, err := s.indexDocument(ctx, projectID, doc)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("failed to index file",
						"project_id", projectID, "path", doc.Path(), "error", err)
				}
				return nil
			}
			units[i] = unit
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]source.Unit, 0, len(units))
	for i, u := range units {
		if done[i] {
			result = append(result, u)
		}
	}
	return result, nil
}

// indexDocument summarizes and embeds a single document under the per-unit
// timeout. The summarizer fails open to a marker summary, so only embedding
// failures drop the document.
func (s *Indexer) indexDocument(ctx context.Context, projectID int64, doc source.Document) (source.Unit, error) {
	unitCtx, cancel := context.WithTimeout(ctx, s.cfg.UnitTimeout())
	defer cancel()

	summary, err := s.summarizer.Summarize(unitCtx, doc.Content(), service.KindFile)
	if err != nil {
		return source.Unit{}, err
	}

	vectors, err := s.embedder.Embed(unitCtx, []string{summary})
	if err != nil {
		return source.Unit{}, fmt.Errorf("embed summary: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return source.Unit{}, fmt.Errorf("embed summary: empty embedding for %s", doc.Path())
	}

	return source.NewUnit(projectID, doc.Path(), doc.Content(), summary, vectors[0])
}

// persist upserts units in small batches with a pause between them. Returns
// the number of units actually stored.
func (s *Indexer) persist(ctx context.Context, units []source.Unit) (int, error) {
	persisted := 0
	for start := 0; start < len(units); start += s.cfg.PersistBatchSize() {
		end := min(start+s.cfg.PersistBatchSize(), len(units))

		if start > 0 {
			if err := sleepCtx(ctx, s.cfg.PersistDelay()); err != nil {
				return persisted, err
			}
		}

		for _, unit := range units[start:end] {
			if _, err := s.units.Upsert(ctx, unit); err != nil {
				if ctx.Err() != nil {
					return persisted, ctx.Err()
				}
				s.logger.Warn("failed to persist source unit",
					"project_id", unit.ProjectID(), "path", unit.Path(), "error", err)
				continue
			}
			persisted++
		}
	}
	return persisted, nil
}

// deleteStale removes units whose paths are no longer in the snapshot.
func (s *Indexer) deleteStale(ctx context.Context, projectID int64, docs []source.Document) error {
	stored, err := s.units.Paths(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list stored paths: %w", err)
	}

	current := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		current[d.Path()] = struct{}{}
	}

	var stale []string
	for _, p := range stored {
		if _, ok := current[p]; !ok {
			stale = append(stale, p)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if err := s.units.DeleteBy(ctx, store.WithProjectID(projectID), store.WithPathIn(stale)); err != nil {
		return fmt.Errorf("delete stale units: %w", err)
	}

	s.logger.Info("deleted stale source units", "project_id", projectID, "count", len(stale))
	return nil
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
