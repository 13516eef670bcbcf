// Package front extracts what a browser front-end knows about the
// services behind it: its routes, the service functions that call the
// API, where those functions are used and the response types it declares.
package front

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ziadkadry99/cortex/internal/walker"
)

// Route is one client-side route.
type Route struct {
	Path          string `json:"path"`
	RouteKey      string `json:"routeKey"`
	ComponentName string `json:"componentName"`
	SourcePath    string `json:"sourcePath"`
}

// Endpoint is an exported service function and the API call it makes.
type Endpoint struct {
	ServiceName string   `json:"serviceName"`
	MethodName  string   `json:"methodName"`
	HTTPMethod  string   `json:"httpMethod"`
	PathPattern string   `json:"pathPattern"`
	SourcePath  string   `json:"sourcePath"`
	ParamNames  []string `json:"paramNames,omitempty"`
}

// Usage records a source file importing a service module or embedding an
// API path literal.
type Usage struct {
	SourcePath     string   `json:"sourcePath"`
	ServiceName    string   `json:"serviceName,omitempty"`
	PathFragment   string   `json:"pathFragment,omitempty"`
	URLLiteral     string   `json:"urlLiteral,omitempty"`
	InvokedMethods []string `json:"invokedMethods,omitempty"`
}

// MethodEndpoint is a service method with the endpoint it calls.
type MethodEndpoint struct {
	MethodName  string `json:"methodName"`
	HTTPMethod  string `json:"httpMethod"`
	PathPattern string `json:"pathPattern"`
}

// RouteEndpoints lists the endpoints a route's page and its directly
// imported components use.
type RouteEndpoints struct {
	Route
	Endpoints []MethodEndpoint `json:"endpoints"`
}

// Property is a first-level field of a declared type.
type Property struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is an exported interface or object type.
type Schema struct {
	TypeName   string     `json:"typeName"`
	Properties []Property `json:"properties"`
	SourcePath string     `json:"sourcePath"`
	Line       int        `json:"line,omitempty"`
}

// Options configure the extractors.
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

// Result is everything extracted from one front-end repo.
type Result struct {
	Routes         []Route
	Endpoints      []Endpoint
	Usages         []Usage
	RouteEndpoints []RouteEndpoints
	Schemas        []Schema
}

// Extract runs every front-end extractor over the repo at repoPath.
// Source paths in the result are relative to workspaceRoot.
func Extract(repoPath, workspaceRoot string, opts Options) Result {
	l := newLayout(repoPath, workspaceRoot)
	var r Result
	r.Routes = extractRoutes(l)
	r.Endpoints = extractEndpoints(l, opts)
	r.Usages = extractUsages(l, opts, methodsByService(r.Endpoints))
	r.RouteEndpoints = buildRouteEndpoints(l, r.Routes, r.Usages, methodIndex(r.Endpoints))
	r.Schemas = extractSchemas(l, opts)
	return r
}

// methodsByService groups endpoint method names by service module.
func methodsByService(eps []Endpoint) map[string][]string {
	out := map[string][]string{}
	for _, e := range eps {
		out[e.ServiceName] = append(out[e.ServiceName], e.MethodName)
	}
	return out
}

// methodIndex maps each method name to the first endpoint declaring it.
func methodIndex(eps []Endpoint) map[string]MethodEndpoint {
	out := map[string]MethodEndpoint{}
	for _, e := range eps {
		if _, ok := out[e.MethodName]; ok {
			continue
		}
		out[e.MethodName] = MethodEndpoint{MethodName: e.MethodName, HTTPMethod: e.HTTPMethod, PathPattern: e.PathPattern}
	}
	return out
}

// layout converts between repo-relative and workspace-relative paths.
type layout struct {
	repoPath string
	prefix   string // repo directory relative to the workspace, "" when they coincide
}

func newLayout(repoPath, workspaceRoot string) layout {
	l := layout{repoPath: repoPath}
	if rel, err := filepath.Rel(workspaceRoot, repoPath); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		l.prefix = filepath.ToSlash(rel)
	}
	return l
}

func (l layout) abs(repoRel string) string {
	return filepath.Join(l.repoPath, filepath.FromSlash(repoRel))
}

func (l layout) workspaceRel(repoRel string) string {
	if l.prefix == "" {
		return repoRel
	}
	return l.prefix + "/" + repoRel
}

func (l layout) repoRel(sourcePath string) string {
	if l.prefix != "" {
		return strings.TrimPrefix(sourcePath, l.prefix+"/")
	}
	return sourcePath
}

func (l layout) read(repoRel string) (string, bool) {
	b, err := os.ReadFile(l.abs(repoRel))
	if err != nil {
		return "", false
	}
	return string(b), true
}

type sourceFile struct {
	repoRel string
	content string
}

// sources reads the TypeScript files under dir (repo-relative).
func (l layout) sources(opts Options, dir string, match func(string) bool) []sourceFile {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     l.abs(dir),
		Languages:   []string{walker.LangTypeScript, walker.LangJavaScript},
		Match:       match,
		Exclude:     opts.Exclude,
		MaxFileSize: opts.MaxFileSize,
		SkipTests:   true,
	})
	if err != nil {
		opts.logger().Debug("front: walking sources", "dir", dir, "error", err)
		return nil
	}
	var out []sourceFile
	for _, f := range files {
		content, err := walker.ReadFile(f.Path, opts.MaxFileSize)
		if err != nil {
			continue
		}
		out = append(out, sourceFile{repoRel: path.Join(dir, f.RelPath), content: content})
	}
	return out
}

var sourceExts = []string{".tsx", ".ts", ".jsx", ".js"}

// resolveImport turns a relative import specifier seen in fromFile into a
// repo-relative file path, preferring files that exist and defaulting to
// a .tsx extension.
func (l layout) resolveImport(fromFile, spec string) string {
	p := path.Clean(path.Join(path.Dir(fromFile), spec))
	if ext := path.Ext(p); ext != "" && slices.Contains(sourceExts, ext) {
		return p
	}
	for _, ext := range sourceExts {
		if walker.Exists(l.abs(p + ext)) {
			return p + ext
		}
	}
	for _, ext := range sourceExts {
		if walker.Exists(l.abs(p + "/index" + ext)) {
			return p + "/index" + ext
		}
	}
	return p + ".tsx"
}
