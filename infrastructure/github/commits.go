package github

import (
	"context"
	"fmt"
	"sort"

	"github.com/neuronhq/neuron/internal/log"
)

// HistoryFetcher retrieves recent commit metadata and per-commit diffs.
type HistoryFetcher struct {
	client *Client
	logger *log.Logger
}

// NewHistoryFetcher creates a HistoryFetcher.
func NewHistoryFetcher(client *Client, logger *log.Logger) *HistoryFetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &HistoryFetcher{client: client, logger: logger}
}

// RecentCommits returns the newest commits from the repository's default
// branch, ordered by author date descending and truncated to limit. The API
// already returns newest first, but the ordering is enforced here rather
// than assumed.
func (h *HistoryFetcher) RecentCommits(ctx context.Context, repoURL, token string, limit int) ([]CommitInfo, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	commits, err := h.client.Authenticated(token).ListCommits(ctx, ref, limit)
	if err != nil {
		return nil, fmt.Errorf("list commits %s: %w", ref, err)
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].AuthoredAt().After(commits[j].AuthoredAt())
	})

	if len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

// Diff returns the unified diff for a commit. The authenticated API is tried
// first; on failure the public .diff endpoint is used. If both fail the diff
// is empty with a nil error, leaving the caller to record a placeholder
// summary rather than abort the poll.
func (h *HistoryFetcher) Diff(ctx context.Context, repoURL, token, sha string) (string, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}

	client := h.client.Authenticated(token)
	diff, apiErr := client.CommitDiff(ctx, ref, sha)
	if apiErr == nil {
		return diff, nil
	}
	h.logger.Debug("commit diff via api failed, trying raw endpoint",
		"repo", ref.String(), "sha", sha, "error", apiErr)

	diff, rawErr := client.RawDiff(ctx, repoURL, sha)
	if rawErr == nil {
		return diff, nil
	}

	h.logger.Warn("failed to fetch commit diff",
		"repo", ref.String(), "sha", sha, "api_error", apiErr, "raw_error", rawErr)
	return "", nil
}
