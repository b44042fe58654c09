package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the config reads so tests see only what
// they set themselves.
func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"HOST", "PORT", "DATA_DIR", "DB_URL", "LOG_LEVEL", "LOG_FORMAT",
		"GITHUB_TOKEN",
		"OPENAI_BASE_URL", "OPENAI_API_KEY", "OPENAI_CHAT_MODEL",
		"OPENAI_EMBEDDING_MODEL", "OPENAI_TIMEOUT", "OPENAI_MAX_RETRIES",
		"OPENAI_INITIAL_DELAY", "OPENAI_BACKOFF_FACTOR",
		"INDEXING_BATCH_SIZE", "INDEXING_BATCH_DELAY_SECONDS",
		"INDEXING_PERSIST_BATCH_SIZE", "INDEXING_PERSIST_DELAY_SECONDS",
		"INDEXING_UNIT_TIMEOUT_SECONDS", "INDEXING_FETCH_CONCURRENCY",
		"RETRIEVAL_LIMIT", "SCORE_THRESHOLD", "COMMIT_LIMIT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
		require.NoError(t, os.Unsetenv(v))
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 50, cfg.Indexing.BatchSize)
	assert.Equal(t, 10, cfg.RetrievalLimit)
	assert.Equal(t, 0.5, cfg.ScoreThreshold)
	assert.Equal(t, 15, cfg.CommitLimit)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_URL", "postgres://localhost/neuron")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/neuron", cfg.DBURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "ghp_test", cfg.GithubToken)
}

func TestLoadFromEnv_ProviderNesting(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_BASE_URL", "https://llm.internal/v1")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_CHAT_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TIMEOUT", "30")
	t.Setenv("OPENAI_MAX_RETRIES", "3")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://llm.internal/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, 30.0, cfg.OpenAI.Timeout)
	assert.Equal(t, 3, cfg.OpenAI.MaxRetries)
}

func TestLoadFromEnv_IndexingNesting(t *testing.T) {
	clearEnv(t)
	t.Setenv("INDEXING_BATCH_SIZE", "25")
	t.Setenv("INDEXING_BATCH_DELAY_SECONDS", "0.5")
	t.Setenv("INDEXING_UNIT_TIMEOUT_SECONDS", "45")
	t.Setenv("INDEXING_FETCH_CONCURRENCY", "8")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Indexing.BatchSize)
	assert.Equal(t, 0.5, cfg.Indexing.BatchDelaySeconds)
	assert.Equal(t, 45.0, cfg.Indexing.UnitTimeoutSeconds)
	assert.Equal(t, 8, cfg.Indexing.FetchConcurrency)
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestToAppConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "10.0.0.1")
	t.Setenv("DB_URL", "postgres://localhost/neuron")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_TIMEOUT", "30")
	t.Setenv("SCORE_THRESHOLD", "0.7")
	t.Setenv("COMMIT_LIMIT", "5")

	envCfg, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := envCfg.ToAppConfig()

	assert.Equal(t, "10.0.0.1", cfg.Host())
	assert.Equal(t, "postgres://localhost/neuron", cfg.DBURL())
	assert.Equal(t, "sk-test", cfg.Provider().APIKey())
	assert.Equal(t, 30*time.Second, cfg.Provider().Timeout())
	assert.Equal(t, 0.7, cfg.ScoreThreshold())
	assert.Equal(t, 5, cfg.CommitLimit())
}

func TestToAppConfig_DataDirDrivesDefaultDBURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/srv/neuron")

	envCfg, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := envCfg.ToAppConfig()

	assert.Equal(t, "/srv/neuron", cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join("/srv/neuron", "neuron.db"), cfg.DBURL())
}

func TestToIndexingConfig(t *testing.T) {
	env := IndexingEnv{
		BatchSize:           25,
		BatchDelaySeconds:   0.5,
		PersistBatchSize:    4,
		PersistDelaySeconds: 0.2,
		UnitTimeoutSeconds:  45,
		FetchConcurrency:    8,
	}

	cfg := env.ToIndexingConfig()

	assert.Equal(t, 25, cfg.BatchSize())
	assert.Equal(t, 500*time.Millisecond, cfg.BatchDelay())
	assert.Equal(t, 4, cfg.PersistBatchSize())
	assert.Equal(t, 200*time.Millisecond, cfg.PersistDelay())
	assert.Equal(t, 45*time.Second, cfg.UnitTimeout())
	assert.Equal(t, 8, cfg.FetchConcurrency())
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, parseLogFormat("json"))
	assert.Equal(t, LogFormatJSON, parseLogFormat("JSON"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("pretty"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("anything-else"))
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestLoadConfig_FromDotEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=7070\nLOG_LEVEL=WARN\n"), 0o600))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port())
	assert.Equal(t, "WARN", cfg.LogLevel())
}

func TestLoadConfig_EnvOverridesDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=7070\n"), 0o600))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port())
}
