// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., OPENAI_CHAT_MODEL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.neuron
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/neuron.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// GithubToken is the default GitHub access token for private repositories.
	// Env: GITHUB_TOKEN
	GithubToken string `envconfig:"GITHUB_TOKEN"`

	// OpenAI configures the AI provider endpoint.
	OpenAI ProviderEnv `envconfig:"OPENAI"`

	// Indexing configures the batch indexing pipeline.
	Indexing IndexingEnv `envconfig:"INDEXING"`

	// RetrievalLimit is the maximum number of retrieval results.
	// Env: RETRIEVAL_LIMIT (default: 10)
	RetrievalLimit int `envconfig:"RETRIEVAL_LIMIT" default:"10"`

	// ScoreThreshold is the minimum similarity for a retrieval result.
	// Env: SCORE_THRESHOLD (default: 0.5)
	ScoreThreshold float64 `envconfig:"SCORE_THRESHOLD" default:"0.5"`

	// CommitLimit is how many recent commits are ingested per poll.
	// Env: COMMIT_LIMIT (default: 15)
	CommitLimit int `envconfig:"COMMIT_LIMIT" default:"15"`
}

// ProviderEnv holds environment configuration for the AI provider.
type ProviderEnv struct {
	// BaseURL is the base URL for the provider API.
	// Env: OPENAI_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the API key for authentication.
	// Env: OPENAI_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// ChatModel is the chat completion model identifier.
	// Env: OPENAI_CHAT_MODEL (default: gpt-4o-mini)
	ChatModel string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// EmbeddingModel is the embedding model identifier.
	// Env: OPENAI_EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// Timeout is the request timeout in seconds.
	// Env: OPENAI_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: OPENAI_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: OPENAI_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: OPENAI_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// IndexingEnv holds environment configuration for the indexing pipeline.
type IndexingEnv struct {
	// BatchSize is how many files are summarized and embedded per batch.
	// Env: INDEXING_BATCH_SIZE (default: 50)
	BatchSize int `envconfig:"BATCH_SIZE" default:"50"`

	// BatchDelaySeconds is the pause between summarize/embed batches.
	// Env: INDEXING_BATCH_DELAY_SECONDS (default: 1)
	BatchDelaySeconds float64 `envconfig:"BATCH_DELAY_SECONDS" default:"1"`

	// PersistBatchSize is how many units are persisted per batch.
	// Env: INDEXING_PERSIST_BATCH_SIZE (default: 2)
	PersistBatchSize int `envconfig:"PERSIST_BATCH_SIZE" default:"2"`

	// PersistDelaySeconds is the pause between persistence batches.
	// Env: INDEXING_PERSIST_DELAY_SECONDS (default: 0.1)
	PersistDelaySeconds float64 `envconfig:"PERSIST_DELAY_SECONDS" default:"0.1"`

	// UnitTimeoutSeconds is the per-unit deadline for summarize and embed calls.
	// Env: INDEXING_UNIT_TIMEOUT_SECONDS (default: 90)
	UnitTimeoutSeconds float64 `envconfig:"UNIT_TIMEOUT_SECONDS" default:"90"`

	// FetchConcurrency is the file content fetch fan-out limit.
	// Env: INDEXING_FETCH_CONCURRENCY (default: 5)
	FetchConcurrency int `envconfig:"FETCH_CONCURRENCY" default:"5"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "NEURON" would require NEURON_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = cfg.Apply(WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.GithubToken != "" {
		cfg = cfg.Apply(WithGithubToken(e.GithubToken))
	}

	cfg = cfg.Apply(WithProviderConfig(e.OpenAI.ToProviderConfig()))
	cfg = cfg.Apply(WithIndexingConfig(e.Indexing.ToIndexingConfig()))

	if e.RetrievalLimit > 0 {
		cfg = cfg.Apply(WithRetrievalLimit(e.RetrievalLimit))
	}
	cfg = cfg.Apply(WithScoreThreshold(e.ScoreThreshold))
	if e.CommitLimit > 0 {
		cfg = cfg.Apply(WithCommitLimit(e.CommitLimit))
	}

	return cfg
}

// ToProviderConfig converts ProviderEnv to ProviderConfig.
func (p ProviderEnv) ToProviderConfig() ProviderConfig {
	opts := []ProviderOption{
		WithChatModel(p.ChatModel),
		WithEmbeddingModel(p.EmbeddingModel),
		WithProviderTimeout(time.Duration(p.Timeout * float64(time.Second))),
		WithProviderMaxRetries(p.MaxRetries),
		WithProviderInitialDelay(time.Duration(p.InitialDelay * float64(time.Second))),
		WithProviderBackoffFactor(p.BackoffFactor),
	}

	if p.BaseURL != "" {
		opts = append(opts, WithProviderBaseURL(p.BaseURL))
	}
	if p.APIKey != "" {
		opts = append(opts, WithProviderAPIKey(p.APIKey))
	}

	return NewProviderConfigWithOptions(opts...)
}

// ToIndexingConfig converts IndexingEnv to IndexingConfig.
func (i IndexingEnv) ToIndexingConfig() IndexingConfig {
	return NewIndexingConfig().
		WithBatchSize(i.BatchSize).
		WithBatchDelay(time.Duration(i.BatchDelaySeconds * float64(time.Second))).
		WithPersistBatchSize(i.PersistBatchSize).
		WithPersistDelay(time.Duration(i.PersistDelaySeconds * float64(time.Second))).
		WithUnitTimeout(time.Duration(i.UnitTimeoutSeconds * float64(time.Second))).
		WithFetchConcurrency(i.FetchConcurrency)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
