package store

// WithProjectID filters by the "project_id" column.
func WithProjectID(id int64) Option {
	return WithCondition("project_id", id)
}

// WithPath filters by the "file_path" column.
func WithPath(path string) Option {
	return WithCondition("file_path", path)
}

// WithPathIn filters by the "file_path" column using IN.
func WithPathIn(paths []string) Option {
	return WithConditionIn("file_path", paths)
}

// WithCommitSHA filters by the "commit_sha" column.
func WithCommitSHA(sha string) Option {
	return WithCondition("commit_sha", sha)
}

// WithCommitSHAIn filters by the "commit_sha" column using IN.
func WithCommitSHAIn(shas []string) Option {
	return WithConditionIn("commit_sha", shas)
}

// WithName filters by the "name" column.
func WithName(name string) Option {
	return WithCondition("name", name)
}

// WithRepoURL filters by the "repo_url" column.
func WithRepoURL(url string) Option {
	return WithCondition("repo_url", url)
}

// WithoutArchived excludes soft-deleted rows (archived_at IS NULL).
func WithoutArchived() Option {
	return WithWhere("archived_at IS NULL")
}
