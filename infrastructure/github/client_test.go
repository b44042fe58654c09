package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{name: "plain", url: "https://github.com/octocat/hello-world", owner: "octocat", repo: "hello-world"},
		{name: "trailing slash", url: "https://github.com/octocat/hello-world/", owner: "octocat", repo: "hello-world"},
		{name: "dot git suffix", url: "https://github.com/octocat/hello-world.git", owner: "octocat", repo: "hello-world"},
		{name: "www host", url: "https://www.github.com/octocat/hello-world", owner: "octocat", repo: "hello-world"},
		{name: "extra path segments", url: "https://github.com/octocat/hello-world/tree/main", owner: "octocat", repo: "hello-world"},
		{name: "surrounding whitespace", url: "  https://github.com/octocat/hello-world  ", owner: "octocat", repo: "hello-world"},
		{name: "wrong host", url: "https://gitlab.com/octocat/hello-world", wantErr: true},
		{name: "missing repo", url: "https://github.com/octocat", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRepoURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, ref.Owner())
			assert.Equal(t, tt.repo, ref.Name())
		})
	}
}

func TestCleanRepoURL(t *testing.T) {
	clean, err := CleanRepoURL("https://www.github.com/octocat/hello-world.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octocat/hello-world", clean)

	_, err = CleanRepoURL("not-a-url")
	assert.ErrorIs(t, err, ErrInvalidRepoURL)
}

func TestClient_Authenticated(t *testing.T) {
	base := NewClient(WithToken("base-token"))

	t.Run("empty token returns receiver", func(t *testing.T) {
		assert.Same(t, base, base.Authenticated(""))
	})

	t.Run("same token returns receiver", func(t *testing.T) {
		assert.Same(t, base, base.Authenticated("base-token"))
	})

	t.Run("different token clones", func(t *testing.T) {
		scoped := base.Authenticated("project-token")
		require.NotSame(t, base, scoped)
		assert.Equal(t, "project-token", scoped.token)
		assert.Equal(t, "base-token", base.token)
		assert.Equal(t, base.baseURL, scoped.baseURL)
	})
}

func TestClient_AuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"default_branch": "main"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithToken("secret-token"))
	_, err := client.DefaultBranch(context.Background(), RepoRef{owner: "o", name: "r"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClient_NoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"default_branch": "main"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.DefaultBranch(context.Background(), RepoRef{owner: "o", name: "r"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "forbidden maps to rate limited", status: http.StatusForbidden, wantErr: ErrRateLimited},
		{name: "too many requests", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(WithBaseURL(srv.URL))
			_, err := client.DefaultBranch(context.Background(), RepoRef{owner: "o", name: "r"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_ServerErrorIsNotSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.DefaultBranch(context.Background(), RepoRef{owner: "o", name: "r"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestClient_FileContent_Base64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// "hello world" base64-encoded with the newline GitHub inserts
		_, _ = w.Write([]byte(`{"content": "aGVsbG8g\nd29ybGQ=", "encoding": "base64"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	content, err := client.FileContent(context.Background(), RepoRef{owner: "o", name: "r"}, "main.go", "main")
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)
}

func TestClient_FileContent_UnknownEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": "x", "encoding": "utf-7"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FileContent(context.Background(), RepoRef{owner: "o", name: "r"}, "main.go", "main")
	assert.ErrorIs(t, err, ErrUnexpectedState)
}

func TestClient_Tree_Truncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tree": [], "truncated": true}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Tree(context.Background(), RepoRef{owner: "o", name: "r"}, "main")
	assert.ErrorIs(t, err, ErrTruncatedTree)
}

func TestClient_ListCommits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{
				"sha": "abc123",
				"commit": {"message": "fix bug", "author": {"name": "Alice", "date": "2026-08-01T10:00:00Z"}},
				"author": {"avatar_url": "https://avatars.example/alice"}
			},
			{
				"sha": "def456",
				"commit": {"message": "add feature", "author": {"name": "Bob", "date": "2026-07-31T10:00:00Z"}},
				"author": null
			}
		]`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	commits, err := client.ListCommits(context.Background(), RepoRef{owner: "o", name: "r"}, 5)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123", commits[0].SHA())
	assert.Equal(t, "fix bug", commits[0].Message())
	assert.Equal(t, "Alice", commits[0].AuthorName())
	assert.Equal(t, "https://avatars.example/alice", commits[0].AuthorAvatarURL())

	assert.Equal(t, "def456", commits[1].SHA())
	assert.Empty(t, commits[1].AuthorAvatarURL(), "missing author block should not panic")
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "docs/getting%20started.md", escapePath("docs/getting started.md"))
	assert.Equal(t, "a/b/c.go", escapePath("a/b/c.go"))
}
