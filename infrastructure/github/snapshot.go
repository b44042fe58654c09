package github

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/internal/log"
)

// fallbackBranch is used when the default branch cannot be resolved.
const fallbackBranch = "main"

// maxBlobBytes is the largest file fetched into a snapshot. Bigger blobs are
// skipped; they are almost always generated artifacts.
const maxBlobBytes = 1 << 20

// SnapshotFetcher fetches a one-shot snapshot of a repository's files. Each
// fetch lists the full tree; there is no diffing between runs.
type SnapshotFetcher struct {
	client      *Client
	filter      IgnoreFilter
	concurrency int
	logger      *log.Logger
}

// SnapshotOption configures the SnapshotFetcher.
type SnapshotOption func(*SnapshotFetcher)

// WithIgnoreFilter sets the exclusion filter.
func WithIgnoreFilter(f IgnoreFilter) SnapshotOption {
	return func(s *SnapshotFetcher) { s.filter = f }
}

// WithConcurrency sets the file content fetch fan-out limit.
func WithConcurrency(n int) SnapshotOption {
	return func(s *SnapshotFetcher) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSnapshotLogger sets the logger.
func WithSnapshotLogger(l *log.Logger) SnapshotOption {
	return func(s *SnapshotFetcher) { s.logger = l }
}

// NewSnapshotFetcher creates a SnapshotFetcher.
func NewSnapshotFetcher(client *Client, opts ...SnapshotOption) *SnapshotFetcher {
	s := &SnapshotFetcher{
		client:      client,
		filter:      NewIgnoreFilter(),
		concurrency: 5,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch retrieves all indexable files from the repository at repoURL. A
// non-empty token overrides the client's own for this fetch.
// The default branch is resolved first; any failure there degrades to the
// "main" branch rather than failing the snapshot. Individual file fetch
// failures are logged and skipped. Only a malformed URL or an unlistable
// tree fails the whole fetch.
func (s *SnapshotFetcher) Fetch(ctx context.Context, repoURL, token string) ([]source.Document, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	client := s.client.Authenticated(token)
	branch := s.resolveBranch(ctx, client, ref)

	entries, err := client.Tree(ctx, ref, branch)
	if err != nil {
		return nil, fmt.Errorf("list tree %s@%s: %w", ref, branch, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsBlob() {
			continue
		}
		if s.filter.ShouldIgnore(e.Path()) {
			continue
		}
		if e.Size() > maxBlobBytes {
			s.logger.Debug("skipping oversized blob", "repo", ref.String(), "path", e.Path(), "size", e.Size())
			continue
		}
		paths = append(paths, e.Path())
	}

	docs := make([]source.Document, len(paths))
	fetched := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, p := range paths {
		g.Go(func() error {
			content, err := client.FileContent(gctx, ref, p, branch)
			if err != nil {
				// Skip the file, keep the snapshot.
				s.logger.Warn("failed to fetch file content",
					"repo", ref.String(), "path", p, "error", err)
				return nil
			}
			docs[i] = source.NewDocument(p, content)
			fetched[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch snapshot %s: %w", ref, err)
	}

	result := make([]source.Document, 0, len(docs))
	for i, d := range docs {
		if fetched[i] {
			result = append(result, d)
		}
	}

	s.logger.Info("fetched repository snapshot",
		"repo", ref.String(), "branch", branch, "files", len(result), "skipped", len(paths)-len(result))
	return result, nil
}

// resolveBranch returns the repository's default branch, falling back to
// "main" on any error.
func (s *SnapshotFetcher) resolveBranch(ctx context.Context, client *Client, ref RepoRef) string {
	branch, err := client.DefaultBranch(ctx, ref)
	if err != nil {
		s.logger.Warn("failed to resolve default branch, using fallback",
			"repo", ref.String(), "fallback", fallbackBranch, "error", err)
		return fallbackBranch
	}
	return branch
}
