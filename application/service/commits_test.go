package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/service"
	"github.com/neuronhq/neuron/domain/store"
	"github.com/neuronhq/neuron/infrastructure/github"
	"github.com/neuronhq/neuron/infrastructure/persistence"
	"github.com/neuronhq/neuron/internal/testdb"
)

// fakeHistory serves canned commit metadata and diffs.
type fakeHistory struct {
	infos     []github.CommitInfo
	infosErr  error
	diffs     map[string]string
	diffErr   error
	lastLimit int
	diffSHAs  []string
}

func (f *fakeHistory) RecentCommits(ctx context.Context, repoURL, token string, limit int) ([]github.CommitInfo, error) {
	f.lastLimit = limit
	if f.infosErr != nil {
		return nil, f.infosErr
	}
	return f.infos, nil
}

func (f *fakeHistory) Diff(ctx context.Context, repoURL, token, sha string) (string, error) {
	f.diffSHAs = append(f.diffSHAs, sha)
	if f.diffErr != nil {
		return "", f.diffErr
	}
	return f.diffs[sha], nil
}

func TestCommitPoller_StoresNewCommitsOnly(t *testing.T) {
	db := testdb.New(t)
	commits := persistence.NewCommitStore(db)
	ctx := context.Background()
	p := testProject(t)

	authoredAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	seen, err := commit.NewRecord(p.ID(), "seen111", "old change", "Alice", "", authoredAt.Add(-time.Hour), "already stored")
	require.NoError(t, err)
	_, err = commits.SaveAll(ctx, []commit.Record{seen})
	require.NoError(t, err)

	history := &fakeHistory{
		infos: []github.CommitInfo{
			github.NewCommitInfo("fresh22", "add retry logic", "Bob", "https://avatars.test/bob", authoredAt),
			github.NewCommitInfo("seen111", "old change", "Alice", "", authoredAt.Add(-time.Hour)),
		},
		diffs: map[string]string{"fresh22": "diff --git a/retry.go b/retry.go"},
	}
	sum := &fakeSummarizer{}
	poller := NewCommitPoller(history, sum, commits, 25, nil)

	inserted, err := poller.Poll(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 25, history.lastLimit)

	// Only the unseen commit's diff is fetched and summarized.
	assert.Equal(t, []string{"fresh22"}, history.diffSHAs)
	require.Equal(t, 1, sum.callCount())
	assert.Equal(t, service.KindDiff, sum.kinds[0])

	records, err := commits.Find(ctx, store.WithProjectID(p.ID()), store.WithCommitSHA("fresh22"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "add retry logic", records[0].Message())
	assert.Equal(t, "Bob", records[0].AuthorName())
	assert.Equal(t, "https://avatars.test/bob", records[0].AuthorAvatarURL())
	assert.Equal(t, "summary of diff --git a/retry.go b/retry.go", records[0].Summary())
}

func TestCommitPoller_SecondPollIsNoop(t *testing.T) {
	db := testdb.New(t)
	commits := persistence.NewCommitStore(db)
	ctx := context.Background()
	p := testProject(t)

	history := &fakeHistory{
		infos: []github.CommitInfo{
			github.NewCommitInfo("abc123", "initial commit", "Alice", "", time.Now().UTC()),
		},
		diffs: map[string]string{"abc123": "diff --git a/main.go b/main.go"},
	}
	sum := &fakeSummarizer{}
	poller := NewCommitPoller(history, sum, commits, 10, nil)

	inserted, err := poller.Poll(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = poller.Poll(ctx, p)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, 1, sum.callCount(), "seen commits must not be re-summarized")
}

func TestCommitPoller_EmptyHistory(t *testing.T) {
	poller := NewCommitPoller(&fakeHistory{}, &fakeSummarizer{}, persistence.NewCommitStore(testdb.New(t)), 10, nil)

	inserted, err := poller.Poll(context.Background(), testProject(t))
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestCommitPoller_HistoryFailureFails(t *testing.T) {
	history := &fakeHistory{infosErr: errors.New("rate limited")}
	poller := NewCommitPoller(history, &fakeSummarizer{}, persistence.NewCommitStore(testdb.New(t)), 10, nil)

	_, err := poller.Poll(context.Background(), testProject(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch recent commits")
}

func TestCommitPoller_UnfetchableDiffStillStores(t *testing.T) {
	db := testdb.New(t)
	commits := persistence.NewCommitStore(db)
	ctx := context.Background()
	p := testProject(t)

	// No diff for the SHA: the summarizer sees empty input.
	history := &fakeHistory{
		infos: []github.CommitInfo{
			github.NewCommitInfo("nodiff1", "force push", "Alice", "", time.Now().UTC()),
		},
	}
	sum := &fakeSummarizer{}
	poller := NewCommitPoller(history, sum, commits, 10, nil)

	inserted, err := poller.Poll(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	require.Equal(t, 1, sum.callCount())
	assert.Empty(t, sum.texts[0])
}
