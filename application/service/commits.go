package service

import (
	"context"
	"fmt"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/service"
	"github.com/neuronhq/neuron/infrastructure/github"
	"github.com/neuronhq/neuron/internal/log"
)

// HistorySource provides recent commit metadata and per-commit diffs.
type HistorySource interface {
	RecentCommits(ctx context.Context, repoURL, token string, limit int) ([]github.CommitInfo, error)
	Diff(ctx context.Context, repoURL, token, sha string) (string, error)
}

// CommitPoller ingests recent commit history into summarized records.
//
// Polling is idempotent: commits whose (project, SHA) pair is already stored
// are skipped before any provider call, and the insert ignores conflicts, so
// concurrent polls of the same project cannot duplicate records.
type CommitPoller struct {
	history    HistorySource
	summarizer service.Summarizer
	commits    commit.Store
	limit      int
	logger     *log.Logger
}

// NewCommitPoller creates a new CommitPoller.
func NewCommitPoller(
	history HistorySource,
	summarizer service.Summarizer,
	commits commit.Store,
	limit int,
	logger *log.Logger,
) *CommitPoller {
	if logger == nil {
		logger = log.Default()
	}
	return &CommitPoller{
		history:    history,
		summarizer: summarizer,
		commits:    commits,
		limit:      limit,
		logger:     logger,
	}
}

// Poll fetches the newest commits for the project, summarizes the ones not
// seen before, and persists them. Diffs are summarized sequentially; commit
// summaries are a trickle, not a bulk load. Returns the number of new
// records stored.
func (s *CommitPoller) Poll(ctx context.Context, p project.Project) (int, error) {
	infos, err := s.history.RecentCommits(ctx, p.RepoURL(), p.GithubToken(), s.limit)
	if err != nil {
		return 0, fmt.Errorf("fetch recent commits: %w", err)
	}
	if len(infos) == 0 {
		return 0, nil
	}

	stored, err := s.commits.SHAs(ctx, p.ID())
	if err != nil {
		return 0, fmt.Errorf("list stored commits: %w", err)
	}
	seen := make(map[string]struct{}, len(stored))
	for _, sha := range stored {
		seen[sha] = struct{}{}
	}

	var records []commit.Record
	for _, info := range infos {
		if _, ok := seen[info.SHA()]; ok {
			continue
		}

		summary, err := s.summarize(ctx, p.RepoURL(), p.GithubToken(), info.SHA())
		if err != nil {
			return 0, err
		}

		record, err := commit.NewRecord(
			p.ID(),
			info.SHA(),
			info.Message(),
			info.AuthorName(),
			info.AuthorAvatarURL(),
			info.AuthoredAt(),
			summary,
		)
		if err != nil {
			return 0, fmt.Errorf("build commit record: %w", err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return 0, nil
	}

	inserted, err := s.commits.SaveAll(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("save commit records: %w", err)
	}

	s.logger.Info("polled commit history",
		"project_id", p.ID(), "fetched", len(infos), "new", inserted)
	return inserted, nil
}

// summarize fetches and summarizes a single commit diff. An unfetchable diff
// comes back empty and the summarizer turns that into its no-changes marker,
// so the record is stored either way.
func (s *CommitPoller) summarize(ctx context.Context, repoURL, token, sha string) (string, error) {
	diff, err := s.history.Diff(ctx, repoURL, token, sha)
	if err != nil {
		return "", fmt.Errorf("fetch diff %s: %w", sha, err)
	}

	summary, err := s.summarizer.Summarize(ctx, diff, service.KindDiff)
	if err != nil {
		return "", fmt.Errorf("summarize diff %s: %w", sha, err)
	}
	return summary, nil
}
