package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/domain/store"
	"github.com/neuronhq/neuron/infrastructure/persistence"
	"github.com/neuronhq/neuron/internal/database"
	"github.com/neuronhq/neuron/internal/testdb"
)

func newProject(t *testing.T, s persistence.ProjectStore, name string) project.Project {
	t.Helper()
	p, err := project.NewProject(name, "https://github.com/octocat/"+name, "")
	require.NoError(t, err)
	saved, err := s.Save(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func TestProjectStore_SaveAndFind(t *testing.T) {
	db := testdb.New(t)
	s := persistence.NewProjectStore(db)
	ctx := context.Background()

	saved := newProject(t, s, "hello-world")
	assert.NotZero(t, saved.ID())
	assert.Equal(t, "hello-world", saved.Name())

	found, err := s.FindOne(ctx, store.WithID(saved.ID()))
	require.NoError(t, err)
	assert.Equal(t, saved.ID(), found.ID())
	assert.Equal(t, "https://github.com/octocat/hello-world", found.RepoURL())
	assert.False(t, found.IsArchived())
}

func TestProjectStore_TokenRoundTrip(t *testing.T) {
	db := testdb.New(t)
	s := persistence.NewProjectStore(db)
	ctx := context.Background()

	p, err := project.NewProject("private", "https://github.com/octocat/private", "ghp_secret")
	require.NoError(t, err)
	saved, err := s.Save(ctx, p)
	require.NoError(t, err)

	found, err := s.FindOne(ctx, store.WithID(saved.ID()))
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", found.GithubToken())
}

func TestProjectStore_ArchiveHidesFromActiveQueries(t *testing.T) {
	db := testdb.New(t)
	s := persistence.NewProjectStore(db)
	ctx := context.Background()

	active := newProject(t, s, "active")
	archived := newProject(t, s, "archived")

	_, err := s.Save(ctx, archived.Archive())
	require.NoError(t, err)

	projects, err := s.Find(ctx, store.WithoutArchived())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, active.ID(), projects[0].ID())

	_, err = s.FindOne(ctx, store.WithID(archived.ID()), store.WithoutArchived())
	assert.ErrorIs(t, err, database.ErrNotFound)

	// The archived row itself still exists.
	found, err := s.FindOne(ctx, store.WithID(archived.ID()))
	require.NoError(t, err)
	assert.True(t, found.IsArchived())
}

func TestUnitStore_UpsertInsertsAndUpdates(t *testing.T) {
	db := testdb.New(t)
	units := persistence.NewUnitStore(db)
	ctx := context.Background()

	u, err := source.NewUnit(1, "main.go", "package main", "entry point", []float64{0.1, 0.2})
	require.NoError(t, err)

	first, err := units.Upsert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "entry point", first.Summary())

	// Re-index the same path with new content.
	updated, err := source.NewUnit(1, "main.go", "package main // v2", "updated entry point", []float64{0.3, 0.4})
	require.NoError(t, err)

	second, err := units.Upsert(ctx, updated)
	require.NoError(t, err)

	// The original row survives the conflict: same id, new content.
	assert.Equal(t, first.ID(), second.ID(), "upsert must keep the original row id")
	assert.Equal(t, "package main // v2", second.Content())
	assert.Equal(t, "updated entry point", second.Summary())
	assert.Equal(t, []float64{0.3, 0.4}, second.Embedding())

	all, err := units.Find(ctx, store.WithProjectID(1))
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not accumulate rows")
}

func TestUnitStore_SamePathDifferentProjects(t *testing.T) {
	db := testdb.New(t)
	units := persistence.NewUnitStore(db)
	ctx := context.Background()

	for _, projectID := range []int64{1, 2} {
		u, err := source.NewUnit(projectID, "main.go", "content", "summary", []float64{0.5})
		require.NoError(t, err)
		_, err = units.Upsert(ctx, u)
		require.NoError(t, err)
	}

	one, err := units.Find(ctx, store.WithProjectID(1))
	require.NoError(t, err)
	two, err := units.Find(ctx, store.WithProjectID(2))
	require.NoError(t, err)
	assert.Len(t, one, 1)
	assert.Len(t, two, 1)
}

func TestUnitStore_PathsAndDeleteBy(t *testing.T) {
	db := testdb.New(t)
	units := persistence.NewUnitStore(db)
	ctx := context.Background()

	for _, path := range []string{"a.go", "b.go", "c.go"} {
		u, err := source.NewUnit(1, path, "content", "summary", []float64{0.5})
		require.NoError(t, err)
		_, err = units.Upsert(ctx, u)
		require.NoError(t, err)
	}

	paths, err := units.Paths(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go", "c.go"}, paths)

	err = units.DeleteBy(ctx, store.WithProjectID(1), store.WithPathIn([]string{"b.go", "c.go"}))
	require.NoError(t, err)

	paths, err = units.Paths(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, paths)
}

func TestUnitStore_EmbeddingRoundTrip(t *testing.T) {
	db := testdb.New(t)
	units := persistence.NewUnitStore(db)
	ctx := context.Background()

	embedding := []float64{0.123456789, -0.5, 0, 1.5}
	u, err := source.NewUnit(1, "vec.go", "content", "summary", embedding)
	require.NoError(t, err)

	_, err = units.Upsert(ctx, u)
	require.NoError(t, err)

	found, err := units.FindOne(ctx, store.WithProjectID(1), store.WithPath("vec.go"))
	require.NoError(t, err)
	assert.Equal(t, embedding, found.Embedding())
}

func newCommitRecord(t *testing.T, projectID int64, sha string, at time.Time) commit.Record {
	t.Helper()
	r, err := commit.NewRecord(projectID, sha, "message for "+sha, "Alice", "", at, "summary")
	require.NoError(t, err)
	return r
}

func TestCommitStore_SaveAllIsIdempotent(t *testing.T) {
	db := testdb.New(t)
	commits := persistence.NewCommitStore(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	batch := []commit.Record{
		newCommitRecord(t, 1, "aaa111", now),
		newCommitRecord(t, 1, "bbb222", now.Add(-time.Hour)),
	}

	inserted, err := commits.SaveAll(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Same SHAs again plus one new: only the new row counts.
	again := []commit.Record{
		newCommitRecord(t, 1, "aaa111", now),
		newCommitRecord(t, 1, "ccc333", now.Add(-2*time.Hour)),
	}
	inserted, err = commits.SaveAll(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	shas, err := commits.SHAs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaa111", "bbb222", "ccc333"}, shas)
}

func TestCommitStore_SaveAllEmpty(t *testing.T) {
	db := testdb.New(t)
	commits := persistence.NewCommitStore(db)

	inserted, err := commits.SaveAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestCommitStore_ScopedByProject(t *testing.T) {
	db := testdb.New(t)
	commits := persistence.NewCommitStore(db)
	ctx := context.Background()

	now := time.Now()
	_, err := commits.SaveAll(ctx, []commit.Record{
		newCommitRecord(t, 1, "shared-sha", now),
		newCommitRecord(t, 2, "shared-sha", now),
	})
	require.NoError(t, err)

	shas, err := commits.SHAs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared-sha"}, shas)
}

func TestQuestionStore_SaveAndListOrdered(t *testing.T) {
	db := testdb.New(t)
	questions := persistence.NewQuestionStore(db)
	ctx := context.Background()

	refs := []project.FileReference{
		project.NewFileReference("main.go", "entry point", 0.91),
		project.NewFileReference("router.go", "http routing", 0.85),
	}

	first := project.NewQuestion(1, "what does main do?", "It starts the server.", refs)
	_, err := questions.Save(ctx, first)
	require.NoError(t, err)

	second := project.NewQuestion(1, "how is routing done?", "Via chi.", nil)
	_, err = questions.Save(ctx, second)
	require.NoError(t, err)

	list, err := questions.Find(ctx, store.WithProjectID(1), store.WithOrderDesc("created_at"))
	require.NoError(t, err)
	require.Len(t, list, 2)

	var got *project.Question
	for i := range list {
		if list[i].Text() == "what does main do?" {
			got = &list[i]
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "It starts the server.", got.Answer())

	gotRefs := got.References()
	require.Len(t, gotRefs, 2)
	assert.Equal(t, "main.go", gotRefs[0].Path())
	assert.Equal(t, "entry point", gotRefs[0].Summary())
	assert.InDelta(t, 0.91, gotRefs[0].Similarity(), 1e-9)
}

func TestQuestionStore_EmptyReferences(t *testing.T) {
	db := testdb.New(t)
	questions := persistence.NewQuestionStore(db)
	ctx := context.Background()

	q := project.NewQuestion(1, "anything indexed?", "No relevant files found.", nil)
	saved, err := questions.Save(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, saved.References())

	found, err := questions.FindOne(ctx, store.WithID(saved.ID()))
	require.NoError(t, err)
	assert.Empty(t, found.References())
}
