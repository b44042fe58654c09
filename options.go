package neuron

import (
	"io"

	"github.com/neuronhq/neuron/infrastructure/github"
	"github.com/neuronhq/neuron/infrastructure/provider"
	"github.com/neuronhq/neuron/internal/config"
	"github.com/neuronhq/neuron/internal/log"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	app               config.AppConfig
	textProvider      provider.TextGenerator
	embeddingProvider provider.Embedder
	githubClient      *github.Client
	logger            *log.Logger
	closers           []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		app: config.NewAppConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig replaces the whole application configuration. Use this when the
// configuration was loaded from the environment.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.app = cfg
	}
}

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL("sqlite:///" + path))
	}
}

// WithPostgres configures PostgreSQL as the database. The pgvector extension
// must be installable on the target database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL(dsn))
	}
}

// WithOpenAI sets an OpenAI-compatible endpoint as the AI provider for both
// text generation and embeddings.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIProvider(apiKey)
		c.textProvider = p
		c.embeddingProvider = p
		c.closers = append(c.closers, p)
	}
}

// WithOpenAIConfig sets an OpenAI-compatible provider with custom
// configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIProviderFromConfig(cfg)
		c.textProvider = p
		c.embeddingProvider = p
		c.closers = append(c.closers, p)
	}
}

// WithTextProvider sets a custom text generation provider.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithEmbeddingProvider sets a custom embedding provider.
func WithEmbeddingProvider(p provider.Embedder) Option {
	return func(c *clientConfig) {
		c.embeddingProvider = p
	}
}

// WithGithubClient sets a custom GitHub API client. Use this to point at a
// GitHub Enterprise instance.
func WithGithubClient(gh *github.Client) Option {
	return func(c *clientConfig) {
		c.githubClient = gh
	}
}

// WithGithubToken sets the fallback GitHub access token used for projects
// created without their own token. Stored, never logged.
func WithGithubToken(token string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithGithubToken(token))
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDataDir(dir))
	}
}

// WithIndexingConfig sets the indexing pipeline configuration.
func WithIndexingConfig(cfg config.IndexingConfig) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithIndexingConfig(cfg))
	}
}

// WithRetrievalLimit sets the maximum number of retrieval matches.
func WithRetrievalLimit(n int) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithRetrievalLimit(n))
	}
}

// WithScoreThreshold sets the minimum similarity for retrieval matches.
func WithScoreThreshold(t float64) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithScoreThreshold(t))
	}
}

// WithCommitLimit sets how many recent commits each poll considers.
func WithCommitLimit(n int) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithCommitLimit(n))
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithCloser registers an io.Closer to close when the client closes.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
