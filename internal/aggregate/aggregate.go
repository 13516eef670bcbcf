// Package aggregate runs discovery and every extractor over a workspace and
// turns what they find into fact entries.
package aggregate

import (
	"log/slog"
	"path/filepath"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/front"
	"github.com/ziadkadry99/cortex/internal/outbound"
	"github.com/ziadkadry99/cortex/internal/routes"
)

// ProgressFunc is called after each repo is aggregated.
type ProgressFunc func(done, total int, repoID string)

// Options configure a build.
type Options struct {
	SQLRepoName string
	Exclude     []string
	MaxFileSize int64
	Policy      outbound.MatchPolicy // Defaults to outbound.FirstInDiscoveryOrder.
	Logger      *slog.Logger
	OnProgress  ProgressFunc
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Result is the output of one full extraction pass.
type Result struct {
	Repos   []discovery.Repo
	Entries []facts.Entry
}

// Build discovers the repos under workspaceRoot and extracts every fact
// from them. Doc entries for all repos come first, then code facts repo by
// repo in discovery order. Unreadable or unrecognised input contributes
// nothing; Build never fails.
func Build(workspaceRoot string, opts Options) Result {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		root = workspaceRoot
	}
	repos := discovery.Discover(root, discovery.Options{
		SQLRepoName: opts.SQLRepoName,
		Exclude:     opts.Exclude,
		Extractors: routes.Registry(routes.Options{
			MaxFileSize: opts.MaxFileSize,
			Exclude:     opts.Exclude,
			Logger:      opts.Logger,
		}),
		Logger: opts.Logger,
	})
	ids := discovery.IDs(repos)

	var entries []facts.Entry
	for _, repo := range repos {
		entries = append(entries, IndexDocs(repo, root, opts)...)
	}
	for i, repo := range repos {
		var repoEntries []facts.Entry
		switch {
		case repo.Variant == discovery.VariantSQL:
			repoEntries = sqlFacts(repo, root, opts)
		case repo.Variant.IsService():
			repoEntries = serviceFacts(repo, root, ids, opts)
		case repo.Variant == discovery.VariantFront:
			repoEntries = frontFacts(repo, root, opts)
		}
		opts.logger().Debug("aggregate: repo done", "repo", repo.ID, "variant", repo.Variant, "entries", len(repoEntries))
		entries = append(entries, repoEntries...)
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(repos), repo.ID)
		}
	}
	if entries == nil {
		entries = []facts.Entry{}
	}
	return Result{Repos: repos, Entries: entries}
}

func sqlFacts(repo discovery.Repo, root string, opts Options) []facts.Entry {
	var out []facts.Entry
	tables := ExtractTables(repo, root, opts)
	for _, t := range tables {
		out = append(out, tableEntry(repo, t))
	}
	out = append(out, summaryEntry(repo, root, summary{tables: len(tables)}))
	out = append(out, changelogEntries(repo, root, opts)...)
	return out
}

func serviceFacts(repo discovery.Repo, root string, ids []string, opts Options) []facts.Entry {
	oopts := outbound.Options{MaxFileSize: opts.MaxFileSize, Exclude: opts.Exclude, Policy: opts.Policy, Logger: opts.Logger}

	rs := routes.Dedupe(repo.ExtractRoutes(root))
	envVars := CollectEnvVars(repo, opts)
	calls := outbound.ServiceCalls(repo, root, ids, oopts)
	edges := MergeMappings(outbound.Resolve(repo, root, ids, oopts))

	var out []facts.Entry
	for _, e := range edges {
		out = append(out, mappingEntry(repo, e))
	}

	var toServices []string
	seen := map[string]bool{}
	for _, c := range calls {
		if !seen[c.ToService] {
			seen[c.ToService] = true
			toServices = append(toServices, c.ToService)
		}
	}
	for _, e := range edges {
		if !seen[e.ToService] {
			seen[e.ToService] = true
			toServices = append(toServices, e.ToService)
		}
	}
	out = append(out, summaryEntry(repo, root, summary{routes: rs, toServices: toServices, envVars: envVars}))

	for _, r := range rs {
		out = append(out, contractEntry(repo, r))
	}
	for _, c := range calls {
		if folds(edges, c) {
			continue
		}
		out = append(out, dependencyEntry(repo, c))
	}
	if len(envVars) > 0 {
		out = append(out, envEntry(repo, envVars))
	}
	for _, t := range GlossaryFromRoutes(rs) {
		out = append(out, glossaryEntry(repo, t))
	}
	for _, c := range ExtractConventions(repo, root, opts) {
		out = append(out, conventionEntry(repo, c))
	}
	out = append(out, changelogEntries(repo, root, opts)...)
	return out
}

func frontFacts(repo discovery.Repo, root string, opts Options) []facts.Entry {
	res := front.Extract(repo.Path, root, front.Options{MaxFileSize: opts.MaxFileSize, Exclude: opts.Exclude, Logger: opts.Logger})
	envVars := CollectEnvVars(repo, opts)

	var out []facts.Entry
	out = append(out, summaryEntry(repo, root, summary{frontRoutes: res.Routes, envVars: envVars}))
	out = append(out, frontEntries(repo, res)...)
	if len(envVars) > 0 {
		out = append(out, envEntry(repo, envVars))
	}
	out = append(out, changelogEntries(repo, root, opts)...)
	return out
}
