// Package neuron provides a chat-with-your-codebase backend as a library.
//
// Neuron registers GitHub repositories as projects, indexes their files into
// summarized, embedded source units, ingests recent commit history, and
// answers questions grounded in the indexed code.
//
// Basic usage:
//
//	client, err := neuron.New(
//	    neuron.WithSQLite(".neuron/neuron.db"),
//	    neuron.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Register and index a repository
//	p, err := client.Projects.Create(ctx, "gin", "https://github.com/gin-gonic/gin", "")
//
//	// Ask a question about the code
//	answer, refs, err := client.Answers.Answer(ctx, p, "How does routing work?")
package neuron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/neuronhq/neuron/application/service"
	"github.com/neuronhq/neuron/infrastructure/github"
	"github.com/neuronhq/neuron/infrastructure/persistence"
	"github.com/neuronhq/neuron/infrastructure/provider"
	"github.com/neuronhq/neuron/infrastructure/search"
	"github.com/neuronhq/neuron/infrastructure/summarizer"
	"github.com/neuronhq/neuron/internal/config"
	"github.com/neuronhq/neuron/internal/database"
	"github.com/neuronhq/neuron/internal/log"
)

// ErrNoProvider indicates no AI provider was configured.
var ErrNoProvider = errors.New("neuron: no AI provider configured")

// Client is the main entry point for the neuron library.
//
// Access resources via struct fields:
//
//	client.Projects.Create(ctx, name, repoURL, token)
//	client.Retrieval.Query(ctx, projectID, "how does auth work")
//	client.Answers.Ask(ctx, project, question)
type Client struct {
	// Public resource fields (direct service access)
	Projects  *service.Projects
	Retrieval *service.Retrieval
	Answers   *service.Answerer

	db      database.Database
	cfg     config.AppConfig
	logger  *log.Logger
	closers []io.Closer
	closed  atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	app := cfg.app

	logger := cfg.logger
	if logger == nil {
		logger = log.NewLogger(app)
	}

	if err := app.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	textProvider, embeddingProvider, closers, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, app.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	// Stores
	projectStore := persistence.NewProjectStore(db)
	commitStore := persistence.NewCommitStore(db)
	questionStore := persistence.NewQuestionStore(db)
	unitStore := persistence.NewUnitStore(db)
	searcher := search.NewSearcher(db, unitStore)

	// GitHub fetchers share one client; per-project tokens override at call
	// time.
	githubClient := cfg.githubClient
	if githubClient == nil {
		githubClient = github.NewClient(github.WithToken(app.GithubToken()))
	}
	snapshots := github.NewSnapshotFetcher(githubClient,
		github.WithConcurrency(app.Indexing().FetchConcurrency()),
		github.WithSnapshotLogger(logger),
	)
	history := github.NewHistoryFetcher(githubClient, logger)

	// Application services
	summarizerSvc := summarizer.NewProviderSummarizer(textProvider, logger)
	embedder := provider.NewSearchEmbedder(embeddingProvider)

	indexer := service.NewIndexer(snapshots, summarizerSvc, embedder, unitStore, app.Indexing(), logger)
	poller := service.NewCommitPoller(history, summarizerSvc, commitStore, app.CommitLimit(), logger)
	retrieval := service.NewRetrieval(embedder, searcher, app.ScoreThreshold(), app.RetrievalLimit(), logger)
	answers := service.NewAnswerer(retrieval, textProvider, unitStore, questionStore, logger)
	projects := service.NewProjects(projectStore, commitStore, indexer, poller, logger)

	logger.Info("neuron client ready", "database", dbDriverName(db))

	return &Client{
		Projects:  projects,
		Retrieval: retrieval,
		Answers:   answers,
		db:        db,
		cfg:       app,
		logger:    logger,
		closers:   closers,
	}, nil
}

// buildProviders resolves the text and embedding providers, constructing one
// from the provider configuration when none was injected.
func buildProviders(cfg *clientConfig) (provider.TextGenerator, provider.Embedder, []io.Closer, error) {
	textProvider := cfg.textProvider
	embeddingProvider := cfg.embeddingProvider
	closers := cfg.closers

	if textProvider == nil || embeddingProvider == nil {
		pc := cfg.app.Provider()
		if pc.APIKey() == "" {
			return nil, nil, nil, ErrNoProvider
		}

		p := provider.NewOpenAIProviderFromConfig(provider.OpenAIConfig{
			APIKey:         pc.APIKey(),
			BaseURL:        pc.BaseURL(),
			ChatModel:      pc.ChatModel(),
			EmbeddingModel: pc.EmbeddingModel(),
			Timeout:        pc.Timeout(),
			MaxRetries:     pc.MaxRetries(),
			InitialDelay:   pc.InitialDelay(),
			BackoffFactor:  pc.BackoffFactor(),
		})
		if textProvider == nil {
			textProvider = p
		}
		if embeddingProvider == nil {
			embeddingProvider = p
		}
		closers = append(closers, p)
	}

	return textProvider, embeddingProvider, closers, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger {
	return c.logger
}

// Config returns the client's configuration.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Database returns the underlying database. Exposed for migrations and
// tests.
func (c *Client) Database() database.Database {
	return c.db
}

// Close waits for background work and releases all resources. Safe to call
// more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.Projects.Wait()

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func dbDriverName(db database.Database) string {
	if db.IsPostgres() {
		return "postgres"
	}
	return "sqlite"
}
