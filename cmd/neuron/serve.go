package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neuronhq/neuron"
	"github.com/neuronhq/neuron/infrastructure/api"
	v1 "github.com/neuronhq/neuron/infrastructure/api/v1"
	"github.com/neuronhq/neuron/internal/config"
	"github.com/neuronhq/neuron/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                      Server host to bind to (default: 0.0.0.0)
  PORT                      Server port to listen on (default: 8080)
  DATA_DIR                  Data directory (default: ~/.neuron)
  DB_URL                    Database URL (default: sqlite:///{data_dir}/neuron.db)
  LOG_LEVEL                 Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                Log format: pretty, json (default: pretty)
  GITHUB_TOKEN              Fallback GitHub token for repository access

  OPENAI_*                  AI provider configuration
    BASE_URL                Base URL for OpenAI-compatible endpoints
    API_KEY                 API key for authentication
    CHAT_MODEL              Chat model (default: gpt-4o-mini)
    EMBEDDING_MODEL         Embedding model (default: text-embedding-3-small)
    TIMEOUT                 Request timeout in seconds (default: 60)
    MAX_RETRIES             Retry attempts (default: 5)

  INDEXING_*                Indexing pipeline configuration
    BATCH_SIZE              Files summarized and embedded per batch (default: 50)
    BATCH_DELAY_SECONDS     Pause between batches (default: 1)
    PERSIST_BATCH_SIZE      Units persisted per batch (default: 2)
    UNIT_TIMEOUT_SECONDS    Per-file deadline (default: 90)
    FETCH_CONCURRENCY       Parallel file downloads (default: 5)

  RETRIEVAL_LIMIT           Maximum retrieval matches (default: 10)
  SCORE_THRESHOLD           Minimum similarity for matches (default: 0.5)
  COMMIT_LIMIT              Recent commits considered per poll (default: 15)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.NewLogger(cfg)
	log.SetDefaultLogger(logger)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.Slog().LogAttrs(context.Background(), slog.LevelInfo, "starting neuron", attrs...)

	client, err := neuron.New(
		neuron.WithConfig(cfg),
		neuron.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create neuron client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close neuron client", "error", err)
		}
	}()

	server := api.NewServer(cfg.Addr(), logger)
	v1.MountRoutes(server.Router(), client)

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down server")
		cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
