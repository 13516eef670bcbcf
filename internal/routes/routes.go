// Package routes extracts the HTTP endpoints each service repo declares,
// with one pattern-based extractor per framework variant.
package routes

import (
	"log/slog"
	"path/filepath"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// Options are shared by every extractor.
type Options struct {
	MaxFileSize int64
	Exclude     []string
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Registry returns the extractor for every service variant.
func Registry(opts Options) discovery.Extractors {
	return discovery.Extractors{
		discovery.VariantNest:    &NestExtractor{opts: opts},
		discovery.VariantExpress: &ExpressExtractor{opts: opts},
		discovery.VariantSpring:  &SpringExtractor{opts: opts},
		discovery.VariantGo:      &GoExtractor{opts: opts},
	}
}

// sourceFile is a file read for extraction.
type sourceFile struct {
	abs     string
	rel     string // relative to the workspace root, slash-separated
	content string
}

// readSources walks dir and reads every matching file. Unreadable files are
// skipped and logged at debug level.
func readSources(opts Options, workspaceRoot, dir string, langs []string, match func(string) bool) []sourceFile {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     dir,
		Languages:   langs,
		Match:       match,
		Exclude:     opts.Exclude,
		MaxFileSize: opts.MaxFileSize,
		SkipTests:   true,
	})
	if err != nil {
		opts.logger().Debug("routes: walking sources", "dir", dir, "error", err)
		return nil
	}
	var out []sourceFile
	for _, f := range files {
		content, err := walker.ReadFile(f.Path, opts.MaxFileSize)
		if err != nil {
			opts.logger().Debug("routes: reading source", "file", f.Path, "error", err)
			continue
		}
		out = append(out, sourceFile{abs: f.Path, rel: RelPath(workspaceRoot, f.Path), content: content})
	}
	return out
}

// RelPath returns path relative to root with forward slashes, or path
// itself when it is not under root.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Dedupe drops routes whose method and full path were already seen,
// keeping the first occurrence.
func Dedupe(routes []discovery.RouteInfo) []discovery.RouteInfo {
	seen := make(map[string]bool, len(routes))
	out := routes[:0:0]
	for _, r := range routes {
		key := r.Method + ":" + r.FullPath
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
