package outbound

import (
	"log/slog"
	"path/filepath"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// Options configure the resolvers.
type Options struct {
	MaxFileSize int64
	Exclude     []string
	Policy      MatchPolicy
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) resolve(key string, repoIDs []string) string {
	return ResolveServiceID(key, repoIDs, o.Policy)
}

// Resolver finds the outbound call mappings of one repo.
type Resolver interface {
	Resolve(repo discovery.Repo, workspaceRoot string, repoIDs []string) []Mapping
}

// ForVariant returns the resolver for a repo variant, or nil when the
// variant has none.
func ForVariant(v discovery.Variant, opts Options) Resolver {
	switch v {
	case discovery.VariantNest, discovery.VariantExpress:
		return &AxiosResolver{opts: opts}
	case discovery.VariantSpring:
		return &SpringResolver{opts: opts}
	}
	return nil
}

// Resolve runs the variant's resolver, returning nil for variants that
// have none.
func Resolve(repo discovery.Repo, workspaceRoot string, repoIDs []string, opts Options) []Mapping {
	r := ForVariant(repo.Variant, opts)
	if r == nil {
		return nil
	}
	return r.Resolve(repo, workspaceRoot, repoIDs)
}

type sourceFile struct {
	rel     string
	content string
}

func readSources(opts Options, workspaceRoot, dir string, langs []string) []sourceFile {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     dir,
		Languages:   langs,
		Exclude:     opts.Exclude,
		MaxFileSize: opts.MaxFileSize,
		SkipTests:   true,
	})
	if err != nil {
		opts.logger().Debug("outbound: walking sources", "dir", dir, "error", err)
		return nil
	}
	var out []sourceFile
	for _, f := range files {
		content, err := walker.ReadFile(f.Path, opts.MaxFileSize)
		if err != nil {
			opts.logger().Debug("outbound: reading source", "file", f.Path, "error", err)
			continue
		}
		out = append(out, sourceFile{rel: relPath(workspaceRoot, f.Path), content: content})
	}
	return out
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
