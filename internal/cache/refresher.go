package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/ziadkadry99/cortex/internal/aggregate"
	"github.com/ziadkadry99/cortex/internal/db"
	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/embeddings"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/store"
)

// RunRecorder keeps a log of refresh runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, r db.Run) error
}

// Indexer is rebuilt from the facts after each refresh, e.g. a semantic
// index.
type Indexer interface {
	Rebuild(ctx context.Context, entries []facts.Entry) error
}

// Options configure a Refresher.
type Options struct {
	WorkspaceRoot string
	CacheDir      string // relative to WorkspaceRoot unless absolute
	Aggregate     aggregate.Options
	Embedder      embeddings.Embedder // nil disables embeddings
	Index         Indexer             // optional
	Recorder      RunRecorder         // optional
	Logger        *slog.Logger
}

// Result describes one refresh.
type Result struct {
	RunID    string
	Entries  []facts.Entry
	Repos    int
	CacheHit bool
	Forced   bool
	Embedded int
	Duration time.Duration
	// Warnings collects recoverable problems such as a cache that could
	// not be read or written. It is nil when there were none.
	Warnings *multierror.Error
}

// Refresher runs refreshes one at a time and publishes each result to a
// store.Holder.
type Refresher struct {
	opts   Options
	root   string
	path   string
	holder *store.Holder
	logger *slog.Logger

	mu    sync.Mutex
	build func(root string, opts aggregate.Options) aggregate.Result
	now   func() time.Time
}

// NewRefresher returns a refresher serving an empty store until the first
// refresh or Warm.
func NewRefresher(opts Options) *Refresher {
	root, err := filepath.Abs(opts.WorkspaceRoot)
	if err != nil {
		root = opts.WorkspaceRoot
	}
	dir := opts.CacheDir
	if dir == "" {
		dir = ".cortex-cache"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Aggregate.Logger == nil {
		opts.Aggregate.Logger = logger
	}
	return &Refresher{
		opts:   opts,
		root:   root,
		path:   Path(dir),
		holder: store.NewHolder(nil),
		logger: logger,
		build:  aggregate.Build,
		now:    time.Now,
	}
}

// Store returns the current fact store.
func (r *Refresher) Store() *store.Store { return r.holder.Load() }

// Holder returns the holder the refresher publishes to.
func (r *Refresher) Holder() *store.Holder { return r.holder }

// CachePath returns the cache file location.
func (r *Refresher) CachePath() string { return r.path }

// Warm serves the cached facts, if any, without checking whether they are
// current. It reports whether a cache was loaded.
func (r *Refresher) Warm() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := Load(r.path)
	if err != nil {
		r.logger.Debug("cache: warm start skipped", "path", r.path, "error", err)
		return false
	}
	if p == nil {
		return false
	}
	r.holder.Swap(store.New(p.Entries))
	return true
}

// Refresh rebuilds the fact collection unless forceFull is false and every
// repo's directory modification time matches the cache. Any difference
// rebuilds every repo. Only a cancelled context makes it fail.
func (r *Refresher) Refresh(ctx context.Context, forceFull bool) (*Result, error) {
	return r.RefreshWithProgress(ctx, forceFull, nil)
}

// RefreshWithProgress is Refresh with an extra per-repo callback, called in
// addition to the one in the aggregate options. It is not called on a
// cache hit.
func (r *Refresher) RefreshWithProgress(ctx context.Context, forceFull bool, onProgress aggregate.ProgressFunc) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.now()
	res := &Result{RunID: uuid.NewString(), Forced: forceFull}
	log := r.logger.With("run", res.RunID)

	// The cache directory must exist before fingerprinting so that writing
	// the cache does not change the modification time of a repo at the
	// workspace root.
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		log.Debug("cache: creating cache directory", "error", err)
	}

	repos := discovery.Discover(r.root, discovery.Options{
		SQLRepoName: r.opts.Aggregate.SQLRepoName,
		Exclude:     r.opts.Aggregate.Exclude,
		Logger:      log,
	})
	mtimes := Fingerprint(repos)
	res.Repos = len(repos)

	if !forceFull {
		p, err := Load(r.path)
		switch {
		case err != nil:
			res.Warnings = multierror.Append(res.Warnings, fmt.Errorf("cache unreadable, rebuilding: %w", err))
		case p != nil && p.Version == Version && SameFingerprint(p.RepoMTimes, mtimes):
			res.Entries = p.Entries
			res.CacheHit = true
		}
	}

	if !res.CacheHit {
		aopts := r.opts.Aggregate
		if onProgress != nil {
			base := aopts.OnProgress
			aopts.OnProgress = func(done, total int, repoID string) {
				if base != nil {
					base(done, total, repoID)
				}
				onProgress(done, total, repoID)
			}
		}
		built := r.build(r.root, aopts)
		res.Repos = len(built.Repos)
		entries := built.Entries

		if r.opts.Embedder != nil {
			n, err := embeddings.ComputeForEntries(ctx, r.opts.Embedder, entries, log)
			if err != nil {
				return nil, fmt.Errorf("computing embeddings: %w", err)
			}
			res.Embedded = n
		}

		canon, err := facts.Canonical(entries)
		if err != nil {
			res.Warnings = multierror.Append(res.Warnings, err)
			canon = entries
		}
		res.Entries = canon

		if err := Save(r.path, res.Entries, mtimes, start); err != nil {
			res.Warnings = multierror.Append(res.Warnings, err)
		}
	}

	r.holder.Swap(store.New(res.Entries))

	if r.opts.Index != nil {
		if err := r.opts.Index.Rebuild(ctx, res.Entries); err != nil {
			res.Warnings = multierror.Append(res.Warnings, fmt.Errorf("rebuilding index: %w", err))
		}
	}

	res.Duration = r.now().Sub(start)
	if r.opts.Recorder != nil {
		run := db.Run{
			ID:         res.RunID,
			StartedAt:  start,
			FinishedAt: start.Add(res.Duration),
			Forced:     forceFull,
			CacheHit:   res.CacheHit,
			Repos:      res.Repos,
			Entries:    len(res.Entries),
		}
		if res.Warnings != nil {
			run.Warnings = res.Warnings.Error()
		}
		if err := r.opts.Recorder.RecordRun(ctx, run); err != nil {
			res.Warnings = multierror.Append(res.Warnings, err)
		}
	}

	log.Info("refresh done",
		"repos", res.Repos,
		"entries", len(res.Entries),
		"cache_hit", res.CacheHit,
		"forced", forceFull,
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}
