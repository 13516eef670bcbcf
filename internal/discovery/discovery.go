// Package discovery classifies the sibling directories of a workspace root
// into repo variants.
package discovery

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ziadkadry99/cortex/internal/walker"
	"golang.org/x/mod/modfile"
)

// DefaultSQLRepoName is the directory name of the database-schema repo.
const DefaultSQLRepoName = "moor-sql"

// NestControllerPath and friends are the conventional controller roots.
const (
	NestControllerPath    = "src/controllers"
	ExpressControllerPath = "src"
	SpringControllerPath  = "src/main/kotlin"
)

// ExcludedDirs are workspace subdirectories that are never repos.
var ExcludedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	"docs":         true,
	"k8s":          true,
	"scripts":      true,
	"vendor":       true,
}

// Options configures Discover.
type Options struct {
	SQLRepoName string     // Defaults to DefaultSQLRepoName.
	Exclude     []string   // Extra directory-name globs to skip.
	Extractors  Extractors // Route extractor per service variant.
	Logger      *slog.Logger
}

// Discover lists the repos under root, one level deep, in lexical order.
// Manifest read errors degrade to "not detected"; a missing root yields
// no repos. When root itself is a front-end app it is returned as the only
// repo.
func Discover(root string, opts Options) []Repo {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sqlName := opts.SQLRepoName
	if sqlName == "" {
		sqlName = DefaultSQLRepoName
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	if isFront(abs) {
		repo := newRepo(filepath.Base(abs), abs, VariantFront, "", packageDescription(abs))
		return []Repo{repo.WithExtractor(opts.Extractors[VariantFront])}
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		logger.Debug("discovery: reading workspace root", "root", abs, "error", err)
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var repos []Repo
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || ExcludedDirs[name] {
			continue
		}
		if walker.MatchesExclude(name, opts.Exclude) {
			continue
		}
		dir := filepath.Join(abs, name)
		repo, ok := classify(name, dir, sqlName)
		if !ok {
			logger.Debug("discovery: unrecognized directory", "dir", name)
			continue
		}
		repos = append(repos, repo.WithExtractor(opts.Extractors[repo.Variant]))
	}
	return repos
}

// classify applies the variant decision order; the first match wins.
func classify(name, dir, sqlName string) (Repo, bool) {
	if name == sqlName {
		return newRepo(name, dir, VariantSQL, "", ""), true
	}
	pkg := readPackageJSON(dir)
	if detectNest(dir, pkg) {
		return newRepo(name, dir, VariantNest, NestControllerPath, pkg.Description), true
	}
	if pkg.hasDep("express") {
		return newRepo(name, dir, VariantExpress, ExpressControllerPath, pkg.Description), true
	}
	if detectSpring(dir) {
		return newRepo(name, dir, VariantSpring, SpringControllerPath, ""), true
	}
	if modPath, ok := detectGo(dir); ok {
		return newRepo(name, dir, VariantGo, "", modPath), true
	}
	if isFront(dir) {
		return newRepo(name, dir, VariantFront, "", pkg.Description), true
	}
	return Repo{}, false
}

func newRepo(id, dir string, v Variant, controllerPath, description string) Repo {
	return Repo{
		ID:             id,
		Name:           HumanizeDirName(id),
		Variant:        v,
		Path:           dir,
		ControllerPath: controllerPath,
		Description:    description,
	}
}

// HumanizeDirName turns "svc-user_admin" into "Svc User Admin".
func HumanizeDirName(dir string) string {
	parts := strings.FieldsFunc(dir, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		r := []rune(strings.ToLower(p))
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

type packageJSON struct {
	Description     string            `json:"description"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (p packageJSON) hasDep(name string) bool {
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// readPackageJSON returns the parsed manifest, or a zero value when it is
// missing or malformed.
func readPackageJSON(dir string) packageJSON {
	var pkg packageJSON
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return pkg
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return packageJSON{}
	}
	return pkg
}

func packageDescription(dir string) string {
	return readPackageJSON(dir).Description
}

func detectNest(dir string, pkg packageJSON) bool {
	if pkg.hasDep("@nestjs/core") || pkg.hasDep("@nestjs/common") {
		return true
	}
	return walker.Exists(filepath.Join(dir, "nest-cli.json"))
}

var springSignatures = []string{"org.springframework.boot", "spring-boot-starter"}

func detectSpring(dir string) bool {
	for _, f := range []string{"build.gradle.kts", "build.gradle", "pom.xml"} {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			continue
		}
		for _, sig := range springSignatures {
			if strings.Contains(string(data), sig) {
				return true
			}
		}
	}
	return false
}

// detectGo reports whether dir is a Go repo and returns its module path
// when go.mod is parseable.
func detectGo(dir string) (string, bool) {
	if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
		return modfile.ModulePath(data), true
	}
	if walker.Exists(filepath.Join(dir, "main.go")) || walker.IsDir(filepath.Join(dir, "cmd")) {
		return "", true
	}
	return "", false
}

var frontFrameworks = []string{"react", "vue", "@angular/core", "next", "svelte", "nuxt", "preact", "solid-js"}

var frontRouteMarkers = []string{
	"src/routes/routePaths.ts",
	"src/routes/routePaths.js",
	"pages",
	"app",
	"src/app",
	"src/pages",
}

func isFront(dir string) bool {
	pkg := readPackageJSON(dir)
	hasFramework := false
	for _, fw := range frontFrameworks {
		if pkg.hasDep(fw) {
			hasFramework = true
			break
		}
	}
	if !hasFramework {
		return false
	}
	for _, m := range frontRouteMarkers {
		if walker.Exists(filepath.Join(dir, filepath.FromSlash(m))) {
			return true
		}
	}
	return false
}
