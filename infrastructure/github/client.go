// Package github fetches repository snapshots and commit history through the
// GitHub REST API. No local clone is ever made.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "neuron-repo-app"

	// maxBodyBytes caps response bodies to keep a hostile or misbehaving
	// endpoint from exhausting memory.
	maxBodyBytes = 32 << 20
)

// API errors.
var (
	ErrNotFound        = errors.New("github: not found")
	ErrRateLimited     = errors.New("github: rate limited")
	ErrInvalidRepoURL  = errors.New("github: invalid repository url")
	ErrTruncatedTree   = errors.New("github: tree listing truncated")
	ErrUnexpectedState = errors.New("github: unexpected response")
)

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	owner string
	name  string
}

// Owner returns the repository owner.
func (r RepoRef) Owner() string { return r.owner }

// Name returns the repository name.
func (r RepoRef) Name() string { return r.name }

// String returns "owner/name".
func (r RepoRef) String() string { return r.owner + "/" + r.name }

// ParseRepoURL extracts the owner and name from a GitHub repository URL such
// as https://github.com/owner/repo or https://github.com/owner/repo.git.
func ParseRepoURL(repoURL string) (RepoRef, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	u, err := url.Parse(trimmed)
	if err != nil {
		return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
	}

	return RepoRef{owner: parts[0], name: parts[1]}, nil
}

// CleanRepoURL returns the canonical https://github.com/owner/repo form.
func CleanRepoURL(repoURL string) (string, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}
	return "https://github.com/" + ref.String(), nil
}

// CommitInfo is commit metadata as listed by the API.
type CommitInfo struct {
	sha             string
	message         string
	authorName      string
	authorAvatarURL string
	authoredAt      time.Time
}

// NewCommitInfo creates commit metadata from its parts.
func NewCommitInfo(sha, message, authorName, authorAvatarURL string, authoredAt time.Time) CommitInfo {
	return CommitInfo{
		sha:             sha,
		message:         message,
		authorName:      authorName,
		authorAvatarURL: authorAvatarURL,
		authoredAt:      authoredAt,
	}
}

// SHA returns the commit SHA.
func (c CommitInfo) SHA() string { return c.sha }

// Message returns the commit message.
func (c CommitInfo) Message() string { return c.message }

// AuthorName returns the author name.
func (c CommitInfo) AuthorName() string { return c.authorName }

// AuthorAvatarURL returns the author avatar URL.
func (c CommitInfo) AuthorAvatarURL() string { return c.authorAvatarURL }

// AuthoredAt returns the author date.
func (c CommitInfo) AuthoredAt() time.Time { return c.authoredAt }

// TreeEntry is a single entry from a recursive tree listing.
type TreeEntry struct {
	path string
	kind string
	size int64
}

// Path returns the repository-relative path.
func (t TreeEntry) Path() string { return t.path }

// IsBlob returns true for file entries.
func (t TreeEntry) IsBlob() bool { return t.kind == "blob" }

// Size returns the blob size in bytes.
func (t TreeEntry) Size() int64 { return t.size }

// Client is a minimal GitHub REST API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithToken sets the bearer token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a GitHub API client. An empty token means unauthenticated
// access, which works for public repositories at a lower rate limit.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated returns a client using the given token. An empty token
// returns the receiver unchanged, so callers can pass a per-repository token
// straight through and fall back to the client's own.
func (c *Client) Authenticated(token string) *Client {
	if token == "" || token == c.token {
		return c
	}
	clone := *c
	clone.token = token
	return &clone
}

// DefaultBranch returns the repository's default branch name.
func (c *Client) DefaultBranch(ctx context.Context, ref RepoRef) (string, error) {
	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	path := fmt.Sprintf("/repos/%s/%s", ref.Owner(), ref.Name())
	if err := c.getJSON(ctx, path, &meta); err != nil {
		return "", err
	}
	if meta.DefaultBranch == "" {
		return "", fmt.Errorf("%w: repository has no default branch", ErrUnexpectedState)
	}
	return meta.DefaultBranch, nil
}

// Tree lists all files reachable from the given branch using a recursive
// tree walk.
func (c *Client) Tree(ctx context.Context, ref RepoRef, branch string) ([]TreeEntry, error) {
	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			Size int64  `json:"size"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}

	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1",
		ref.Owner(), ref.Name(), url.PathEscape(branch))
	if err := c.getJSON(ctx, path, &tree); err != nil {
		return nil, err
	}
	if tree.Truncated {
		return nil, fmt.Errorf("%w: %s@%s", ErrTruncatedTree, ref, branch)
	}

	entries := make([]TreeEntry, 0, len(tree.Tree))
	for _, e := range tree.Tree {
		entries = append(entries, TreeEntry{path: e.Path, kind: e.Type, size: e.Size})
	}
	return entries, nil
}

// FileContent fetches and decodes a file's content at the given ref.
func (c *Client) FileContent(ctx context.Context, ref RepoRef, filePath, branch string) (string, error) {
	var blob struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}

	apiPath := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s",
		ref.Owner(), ref.Name(), escapePath(filePath), url.QueryEscape(branch))
	if err := c.getJSON(ctx, apiPath, &blob); err != nil {
		return "", err
	}

	switch blob.Encoding {
	case "base64":
		// GitHub wraps base64 content in newlines.
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode content of %s: %w", filePath, err)
		}
		return string(decoded), nil
	case "none", "":
		return blob.Content, nil
	default:
		return "", fmt.Errorf("%w: encoding %q for %s", ErrUnexpectedState, blob.Encoding, filePath)
	}
}

// ListCommits returns up to perPage recent commits from the default branch.
func (c *Client) ListCommits(ctx context.Context, ref RepoRef, perPage int) ([]CommitInfo, error) {
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Author *struct {
			AvatarURL string `json:"avatar_url"`
		} `json:"author"`
	}

	path := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d", ref.Owner(), ref.Name(), perPage)
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	commits := make([]CommitInfo, 0, len(raw))
	for _, r := range raw {
		info := CommitInfo{
			sha:        r.SHA,
			message:    r.Commit.Message,
			authorName: r.Commit.Author.Name,
			authoredAt: r.Commit.Author.Date,
		}
		if r.Author != nil {
			info.authorAvatarURL = r.Author.AvatarURL
		}
		commits = append(commits, info)
	}
	return commits, nil
}

// CommitDiff fetches the unified diff of a commit via the API.
func (c *Client) CommitDiff(ctx context.Context, ref RepoRef, sha string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/commits/%s", ref.Owner(), ref.Name(), url.PathEscape(sha))

	req, err := c.newRequest(ctx, c.baseURL+path)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3.diff")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// RawDiff fetches a commit diff from the public {repoURL}/commit/{sha}.diff
// endpoint. Works without authentication for public repositories.
func (c *Client) RawDiff(ctx context.Context, repoURL, sha string) (string, error) {
	clean, err := CleanRepoURL(repoURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/commit/%s.diff", clean, url.PathEscape(sha)), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3.diff")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) newRequest(ctx context.Context, fullURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, c.baseURL+path)
	if err != nil {
		return err
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, req.URL.Path)
	default:
		return nil, fmt.Errorf("github request %s: status %d", req.URL.Path, resp.StatusCode)
	}
}

// escapePath escapes each path segment while preserving separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
