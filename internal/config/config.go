// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 8080
	DefaultLogLevel         = "INFO"
	DefaultRetrievalLimit   = 10
	DefaultScoreThreshold   = 0.5
	DefaultCommitLimit      = 15
	DefaultFetchConcurrency = 5

	DefaultProviderTimeout       = 60 * time.Second
	DefaultProviderMaxRetries    = 5
	DefaultProviderInitialDelay  = 2 * time.Second
	DefaultProviderBackoffFactor = 2.0

	DefaultIndexBatchSize    = 50
	DefaultIndexBatchDelay   = time.Second
	DefaultPersistBatchSize  = 2
	DefaultPersistBatchDelay = 100 * time.Millisecond
	DefaultUnitTimeout       = 90 * time.Second
	DefaultSummaryInputLimit = 10000
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// ProviderConfig configures the AI provider endpoint.
type ProviderConfig struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	maxRetries     int
	initialDelay   time.Duration
	backoffFactor  float64
}

// NewProviderConfig creates a ProviderConfig with defaults.
func NewProviderConfig() ProviderConfig {
	return ProviderConfig{
		timeout:       DefaultProviderTimeout,
		maxRetries:    DefaultProviderMaxRetries,
		initialDelay:  DefaultProviderInitialDelay,
		backoffFactor: DefaultProviderBackoffFactor,
	}
}

// BaseURL returns the base URL for the provider API.
func (p ProviderConfig) BaseURL() string { return p.baseURL }

// APIKey returns the API key.
func (p ProviderConfig) APIKey() string { return p.apiKey }

// ChatModel returns the chat completion model identifier.
func (p ProviderConfig) ChatModel() string { return p.chatModel }

// EmbeddingModel returns the embedding model identifier.
func (p ProviderConfig) EmbeddingModel() string { return p.embeddingModel }

// Timeout returns the request timeout.
func (p ProviderConfig) Timeout() time.Duration { return p.timeout }

// MaxRetries returns the maximum retry count.
func (p ProviderConfig) MaxRetries() int { return p.maxRetries }

// InitialDelay returns the initial retry delay.
func (p ProviderConfig) InitialDelay() time.Duration { return p.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (p ProviderConfig) BackoffFactor() float64 { return p.backoffFactor }

// IsConfigured returns true if the provider has an API key.
func (p ProviderConfig) IsConfigured() bool {
	return p.apiKey != ""
}

// ProviderOption is a functional option for ProviderConfig.
type ProviderOption func(*ProviderConfig)

// WithProviderBaseURL sets the base URL.
func WithProviderBaseURL(url string) ProviderOption {
	return func(p *ProviderConfig) { p.baseURL = url }
}

// WithProviderAPIKey sets the API key.
func WithProviderAPIKey(key string) ProviderOption {
	return func(p *ProviderConfig) { p.apiKey = key }
}

// WithChatModel sets the chat model.
func WithChatModel(model string) ProviderOption {
	return func(p *ProviderConfig) { p.chatModel = model }
}

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) ProviderOption {
	return func(p *ProviderConfig) { p.embeddingModel = model }
}

// WithProviderTimeout sets the request timeout.
func WithProviderTimeout(d time.Duration) ProviderOption {
	return func(p *ProviderConfig) { p.timeout = d }
}

// WithProviderMaxRetries sets the maximum retry count.
func WithProviderMaxRetries(n int) ProviderOption {
	return func(p *ProviderConfig) { p.maxRetries = n }
}

// WithProviderInitialDelay sets the initial retry delay.
func WithProviderInitialDelay(d time.Duration) ProviderOption {
	return func(p *ProviderConfig) { p.initialDelay = d }
}

// WithProviderBackoffFactor sets the retry backoff multiplier.
func WithProviderBackoffFactor(f float64) ProviderOption {
	return func(p *ProviderConfig) { p.backoffFactor = f }
}

// NewProviderConfigWithOptions creates a ProviderConfig with functional options.
func NewProviderConfigWithOptions(opts ...ProviderOption) ProviderConfig {
	p := NewProviderConfig()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// IndexingConfig configures the batch indexing pipeline.
type IndexingConfig struct {
	batchSize        int
	batchDelay       time.Duration
	persistBatchSize int
	persistDelay     time.Duration
	unitTimeout      time.Duration
	fetchConcurrency int
}

// NewIndexingConfig creates an IndexingConfig with defaults.
func NewIndexingConfig() IndexingConfig {
	return IndexingConfig{
		batchSize:        DefaultIndexBatchSize,
		batchDelay:       DefaultIndexBatchDelay,
		persistBatchSize: DefaultPersistBatchSize,
		persistDelay:     DefaultPersistBatchDelay,
		unitTimeout:      DefaultUnitTimeout,
		fetchConcurrency: DefaultFetchConcurrency,
	}
}

// BatchSize returns how many files are summarized and embedded per batch.
func (i IndexingConfig) BatchSize() int { return i.batchSize }

// BatchDelay returns the pause between summarize/embed batches.
func (i IndexingConfig) BatchDelay() time.Duration { return i.batchDelay }

// PersistBatchSize returns how many units are persisted per batch.
func (i IndexingConfig) PersistBatchSize() int { return i.persistBatchSize }

// PersistDelay returns the pause between persistence batches.
func (i IndexingConfig) PersistDelay() time.Duration { return i.persistDelay }

// UnitTimeout returns the per-unit deadline for summarize and embed calls.
func (i IndexingConfig) UnitTimeout() time.Duration { return i.unitTimeout }

// FetchConcurrency returns the file content fetch fan-out limit.
func (i IndexingConfig) FetchConcurrency() int { return i.fetchConcurrency }

// WithBatchSize returns a new config with the specified batch size.
func (i IndexingConfig) WithBatchSize(n int) IndexingConfig {
	if n > 0 {
		i.batchSize = n
	}
	return i
}

// WithBatchDelay returns a new config with the specified batch delay.
func (i IndexingConfig) WithBatchDelay(d time.Duration) IndexingConfig {
	if d >= 0 {
		i.batchDelay = d
	}
	return i
}

// WithPersistBatchSize returns a new config with the specified persist batch size.
func (i IndexingConfig) WithPersistBatchSize(n int) IndexingConfig {
	if n > 0 {
		i.persistBatchSize = n
	}
	return i
}

// WithPersistDelay returns a new config with the specified persist delay.
func (i IndexingConfig) WithPersistDelay(d time.Duration) IndexingConfig {
	if d >= 0 {
		i.persistDelay = d
	}
	return i
}

// WithUnitTimeout returns a new config with the specified per-unit timeout.
func (i IndexingConfig) WithUnitTimeout(d time.Duration) IndexingConfig {
	if d > 0 {
		i.unitTimeout = d
	}
	return i
}

// WithFetchConcurrency returns a new config with the specified fetch fan-out.
func (i IndexingConfig) WithFetchConcurrency(n int) IndexingConfig {
	if n > 0 {
		i.fetchConcurrency = n
	}
	return i
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host           string
	port           int
	dataDir        string
	dbURL          string
	logLevel       string
	logFormat      LogFormat
	githubToken    string
	provider       ProviderConfig
	indexing       IndexingConfig
	retrievalLimit int
	scoreThreshold float64
	commitLimit    int
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".neuron"
	}
	return filepath.Join(home, ".neuron")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:           DefaultHost,
		port:           DefaultPort,
		dataDir:        dataDir,
		dbURL:          "sqlite:///" + filepath.Join(dataDir, "neuron.db"),
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatPretty,
		provider:       NewProviderConfig(),
		indexing:       NewIndexingConfig(),
		retrievalLimit: DefaultRetrievalLimit,
		scoreThreshold: DefaultScoreThreshold,
		commitLimit:    DefaultCommitLimit,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// GithubToken returns the default GitHub access token, possibly empty.
func (c AppConfig) GithubToken() string { return c.githubToken }

// Provider returns the AI provider config.
func (c AppConfig) Provider() ProviderConfig { return c.provider }

// Indexing returns the indexing pipeline config.
func (c AppConfig) Indexing() IndexingConfig { return c.indexing }

// RetrievalLimit returns the maximum number of retrieval results.
func (c AppConfig) RetrievalLimit() int { return c.retrievalLimit }

// ScoreThreshold returns the minimum similarity for a retrieval result.
func (c AppConfig) ScoreThreshold() float64 { return c.scoreThreshold }

// CommitLimit returns how many recent commits are ingested per poll.
func (c AppConfig) CommitLimit() int { return c.commitLimit }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		if c.dbURL == "" || strings.Contains(c.dbURL, "neuron.db") {
			c.dbURL = "sqlite:///" + filepath.Join(dir, "neuron.db")
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithGithubToken sets the default GitHub access token.
func WithGithubToken(token string) AppConfigOption {
	return func(c *AppConfig) { c.githubToken = token }
}

// WithProviderConfig sets the AI provider config.
func WithProviderConfig(p ProviderConfig) AppConfigOption {
	return func(c *AppConfig) { c.provider = p }
}

// WithIndexingConfig sets the indexing pipeline config.
func WithIndexingConfig(i IndexingConfig) AppConfigOption {
	return func(c *AppConfig) { c.indexing = i }
}

// WithRetrievalLimit sets the maximum number of retrieval results.
func WithRetrievalLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.retrievalLimit = n
		}
	}
}

// WithScoreThreshold sets the minimum similarity for retrieval results.
func WithScoreThreshold(t float64) AppConfigOption {
	return func(c *AppConfig) {
		if t >= 0 && t < 1 {
			c.scoreThreshold = t
		}
	}
}

// WithCommitLimit sets how many recent commits are ingested per poll.
func WithCommitLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.commitLimit = n
		}
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("chat_model", c.provider.ChatModel()),
		slog.String("embedding_model", c.provider.EmbeddingModel()),
		slog.Bool("github_token_set", c.githubToken != ""),
		slog.Int("retrieval_limit", c.retrievalLimit),
		slog.Float64("score_threshold", c.scoreThreshold),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}
