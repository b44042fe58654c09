package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/infrastructure/github"
	"github.com/neuronhq/neuron/infrastructure/persistence"
	"github.com/neuronhq/neuron/internal/database"
	"github.com/neuronhq/neuron/internal/testdb"
)

type projectsHarness struct {
	svc     *Projects
	units   source.UnitStore
	commits commit.Store
	snaps   *fakeSnapshots
	history *fakeHistory
}

func newProjectsHarness(t *testing.T, db database.Database) *projectsHarness {
	t.Helper()

	units := persistence.NewUnitStore(db)
	commits := persistence.NewCommitStore(db)
	snaps := &fakeSnapshots{}
	history := &fakeHistory{}
	sum := &fakeSummarizer{}

	indexer := NewIndexer(snaps, sum, &fakeEmbedder{}, units, fastIndexingConfig(), nil)
	poller := NewCommitPoller(history, sum, commits, 10, nil)
	svc := NewProjects(persistence.NewProjectStore(db), commits, indexer, poller, nil)

	return &projectsHarness{svc: svc, units: units, commits: commits, snaps: snaps, history: history}
}

func TestProjects_CreateIndexesInBackground(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))
	ctx := context.Background()

	h.snaps.docs = []source.Document{source.NewDocument("main.go", "package main")}
	h.history.infos = []github.CommitInfo{
		github.NewCommitInfo("abc123", "initial commit", "Alice", "", time.Now().UTC()),
	}

	p, err := h.svc.Create(ctx, "demo", "https://github.com/octocat/demo", "ghp_demo")
	require.NoError(t, err)
	assert.NotZero(t, p.ID())
	assert.Equal(t, "demo", p.Name())

	h.svc.Wait()

	paths, err := h.units.Paths(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, paths)

	shas, err := h.commits.SHAs(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123"}, shas)

	// The stored token authenticates the snapshot fetch.
	assert.Equal(t, "ghp_demo", h.snaps.lastToken)
}

func TestProjects_CreateInvalidInput(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))

	_, err := h.svc.Create(context.Background(), "", "https://github.com/octocat/demo", "")
	assert.Error(t, err)
}

func TestProjects_GetNotFound(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))

	_, err := h.svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjects_ArchiveHidesProject(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))
	ctx := context.Background()

	p, err := h.svc.Create(ctx, "demo", "https://github.com/octocat/demo", "")
	require.NoError(t, err)
	h.svc.Wait()

	require.NoError(t, h.svc.Archive(ctx, p.ID()))

	_, err = h.svc.Get(ctx, p.ID())
	assert.ErrorIs(t, err, ErrProjectNotFound)

	projects, err := h.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjects_ArchiveNotFound(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))

	err := h.svc.Archive(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjects_IndexSynchronously(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))
	ctx := context.Background()

	p, err := h.svc.Create(ctx, "demo", "https://github.com/octocat/demo", "")
	require.NoError(t, err)
	h.svc.Wait()

	h.snaps.docs = []source.Document{
		source.NewDocument("a.go", "package a"),
		source.NewDocument("b.go", "package b"),
	}

	report, err := h.svc.Index(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total())
	assert.Equal(t, 2, report.Succeeded())
}

func TestProjects_PollCommitsSynchronously(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))
	ctx := context.Background()

	p, err := h.svc.Create(ctx, "demo", "https://github.com/octocat/demo", "")
	require.NoError(t, err)
	h.svc.Wait()

	h.history.infos = []github.CommitInfo{
		github.NewCommitInfo("abc123", "initial commit", "Alice", "", time.Now().UTC()),
	}

	inserted, err := h.svc.PollCommits(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestProjects_CommitsNewestFirst(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))
	ctx := context.Background()

	p, err := h.svc.Create(ctx, "demo", "https://github.com/octocat/demo", "")
	require.NoError(t, err)
	h.svc.Wait()

	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	older, err := commit.NewRecord(p.ID(), "older11", "older", "Alice", "", now.Add(-time.Hour), "summary")
	require.NoError(t, err)
	newer, err := commit.NewRecord(p.ID(), "newer22", "newer", "Alice", "", now, "summary")
	require.NoError(t, err)
	_, err = h.commits.SaveAll(ctx, []commit.Record{older, newer})
	require.NoError(t, err)

	records, err := h.svc.Commits(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer22", records[0].SHA())
	assert.Equal(t, "older11", records[1].SHA())
}

func TestProjects_CommitsForUnknownProject(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))

	_, err := h.svc.Commits(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjects_ListNewestFirst(t *testing.T) {
	h := newProjectsHarness(t, testdb.New(t))
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		_, err := h.svc.Create(ctx, name, "https://github.com/octocat/"+name, "")
		require.NoError(t, err)
	}
	h.svc.Wait()

	projects, err := h.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
}
