package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/cortex/internal/aggregate"
	"github.com/ziadkadry99/cortex/internal/cache"
	"github.com/ziadkadry99/cortex/internal/config"
	"github.com/ziadkadry99/cortex/internal/db"
	"github.com/ziadkadry99/cortex/internal/embeddings"
	"github.com/ziadkadry99/cortex/internal/logging"
	"github.com/ziadkadry99/cortex/internal/vectordb"
)

// runsDBName is the SQLite file in the cache directory that logs refresh runs.
const runsDBName = "cortex.db"

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `cortex init` to create a config file", err)
	}
	if workspaceFlag != "" {
		cfg.WorkspaceRoot = workspaceFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return logging.New(os.Stderr, verbose)
}

// engine bundles a refresher with the optional collaborators it feeds.
type engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	refresher *cache.Refresher
	semantic  *vectordb.ChromemStore // nil when embeddings are disabled
	database  *db.DB                 // nil unless withRuns
}

// newEngine wires a refresher from cfg. withRuns opens the run log in the
// cache directory; callers must Close the engine.
func newEngine(cfg *config.Config, logger *slog.Logger, withRuns bool) (*engine, error) {
	e := &engine{cfg: cfg, logger: logger}

	embedder, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	opts := cache.Options{
		WorkspaceRoot: cfg.WorkspaceRoot,
		CacheDir:      cfg.CachePath(),
		Aggregate: aggregate.Options{
			SQLRepoName: cfg.SQLRepoName,
			Exclude:     cfg.Exclude,
			MaxFileSize: cfg.MaxFileBytes,
			Logger:      logger,
		},
		Logger: logger,
	}
	if embedder != nil {
		e.semantic, err = vectordb.NewChromemStore(embedder)
		if err != nil {
			return nil, fmt.Errorf("creating vector store: %w", err)
		}
		opts.Embedder = embedder
		opts.Index = e.semantic
	}
	if withRuns {
		dir := cfg.CachePath()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		e.database, err = db.Open(filepath.Join(dir, runsDBName))
		if err != nil {
			return nil, fmt.Errorf("opening run log: %w", err)
		}
		opts.Recorder = e.database
	}

	e.refresher = cache.NewRefresher(opts)
	return e, nil
}

// vectorStore returns the semantic index as an interface value that is nil
// when embeddings are disabled.
func (e *engine) vectorStore() vectordb.VectorStore {
	if e.semantic == nil {
		return nil
	}
	return e.semantic
}

// warm serves cached facts right away and rebuilds the semantic index from
// their stored embeddings.
func (e *engine) warm(ctx context.Context) bool {
	if !e.refresher.Warm() {
		return false
	}
	if e.semantic != nil {
		if err := e.semantic.Rebuild(ctx, e.refresher.Store().Entries()); err != nil {
			e.logger.Warn("rebuilding semantic index from cache", "error", err)
		}
	}
	return true
}

func (e *engine) Close() error {
	if e.database != nil {
		return e.database.Close()
	}
	return nil
}

// loadEngine builds an engine and brings its store up to date.
func loadEngine(ctx context.Context) (*engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e, err := newEngine(cfg, newLogger(), false)
	if err != nil {
		return nil, err
	}
	res, err := e.refresher.Refresh(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("refreshing: %w", err)
	}
	logWarnings(e.logger, res)
	return e, nil
}

func logWarnings(logger *slog.Logger, res *cache.Result) {
	if res.Warnings == nil {
		return
	}
	for _, err := range res.Warnings.Errors {
		logger.Warn("refresh", "warning", err)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
