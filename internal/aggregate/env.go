package aggregate

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// envExampleFiles list the variables a repo expects to be set.
var envExampleFiles = []string{".env.example", ".env.sample", ".env.dev", ".env.desa"}

var (
	envLine      = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_]\w*)\s*=`)
	tsEnvRead    = regexp.MustCompile(`process\.env\.([A-Za-z_]\w*)|config(?:Service)?\s*\.\s*get(?:OrThrow)?\s*(?:<[^>()]*>)?\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	goEnvRead    = regexp.MustCompile(`os\.(?:Getenv|LookupEnv)\(\s*"([A-Za-z_]\w*)"\s*\)`)
	springEnvRef = regexp.MustCompile(`\$\{([A-Za-z_]\w*)(?::[^}]*)?\}`)
)

// CollectEnvVars returns the sorted, de-duplicated configuration keys a
// repo declares in its env example files or reads in code.
func CollectEnvVars(repo discovery.Repo, opts Options) []string {
	vars := map[string]bool{}
	for _, name := range envExampleFiles {
		f, err := os.Open(filepath.Join(repo.Path, name))
		if err != nil {
			continue
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if m := envLine.FindStringSubmatch(sc.Text()); m != nil {
				vars[m[1]] = true
			}
		}
		f.Close()
	}

	var (
		dir   string
		langs []string
		re    *regexp.Regexp
	)
	switch repo.Variant {
	case discovery.VariantNest, discovery.VariantExpress, discovery.VariantFront:
		dir, langs, re = filepath.Join(repo.Path, "src"), []string{walker.LangTypeScript, walker.LangJavaScript}, tsEnvRead
	case discovery.VariantGo:
		dir, langs, re = repo.Path, []string{walker.LangGo}, goEnvRead
	case discovery.VariantSpring:
		dir, langs, re = filepath.Join(repo.Path, "src", "main", "resources"), []string{walker.LangYAML}, springEnvRef
	}
	if re != nil {
		for _, f := range readSources(opts, dir, langs, nil) {
			for _, m := range re.FindAllStringSubmatch(f.content, -1) {
				for _, g := range m[1:] {
					if g != "" {
						vars[g] = true
					}
				}
			}
		}
	}
	if repo.Variant == discovery.VariantSpring {
		if b, err := os.ReadFile(filepath.Join(dir, "application.properties")); err == nil {
			for _, m := range springEnvRef.FindAllStringSubmatch(string(b), -1) {
				vars[m[1]] = true
			}
		}
	}

	out := make([]string, 0, len(vars))
	for v := range vars {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type sourceFile struct {
	abs     string
	rel     string // relative to the walked directory
	content string
}

func readSources(opts Options, dir string, langs []string, match func(string) bool) []sourceFile {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     dir,
		Languages:   langs,
		Match:       match,
		Exclude:     opts.Exclude,
		MaxFileSize: opts.MaxFileSize,
		SkipTests:   true,
	})
	if err != nil {
		opts.logger().Debug("aggregate: walking sources", "dir", dir, "error", err)
		return nil
	}
	var out []sourceFile
	for _, f := range files {
		content, err := walker.ReadFile(f.Path, opts.MaxFileSize)
		if err != nil {
			opts.logger().Debug("aggregate: reading source", "file", f.Path, "error", err)
			continue
		}
		out = append(out, sourceFile{abs: f.Path, rel: f.RelPath, content: content})
	}
	return out
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
