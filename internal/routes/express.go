package routes

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

var (
	expressRouterDecl = regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*(?::\s*[\w.]+\s*)?=\s*(?:express\s*\(\s*\)|(?:express\s*\.\s*)?Router\s*\(\s*\))`)
	expressRoute      = regexp.MustCompile("\\b(\\w+)\\s*\\.\\s*(get|post|put|patch|delete|options|head|all)\\s*\\(\\s*['\"`](/[^'\"`]*)['\"`]")
	expressUse        = regexp.MustCompile("\\b(\\w+)\\s*\\.\\s*use\\s*\\(\\s*['\"`](/[^'\"`]*)['\"`]\\s*,\\s*(?:[\\w.]+\\s*(?:\\([^)]*\\))?\\s*,\\s*)*(\\w+)\\s*\\)")
	expressImport     = regexp.MustCompile(`import\s+(\w+)\s+from\s+['"](\.[^'"]+)['"]`)
	expressRequire    = regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*require\s*\(\s*['"](\.[^'"]+)['"]\s*\)`)
)

// expressDefaultReceivers are accepted as route receivers even when the
// declaration lives in another file.
var expressDefaultReceivers = map[string]bool{"app": true, "router": true}

// ExpressExtractor reads app/router verb registrations under src, applying
// app.use('/prefix', router) mounts resolved within the repo.
type ExpressExtractor struct {
	opts Options
}

type expressMount struct {
	receiver, prefix, target string
}

type expressFile struct {
	sourceFile
	routers map[string]bool
	imports map[string]string // local name -> repo-relative module file
	mounts  []expressMount
}

func (x *ExpressExtractor) ExtractRoutes(repo discovery.Repo, workspaceRoot string) []discovery.RouteInfo {
	dir := filepath.Join(repo.Path, filepath.FromSlash(repo.ControllerPath))
	langs := []string{walker.LangTypeScript, walker.LangJavaScript}

	sources := readSources(x.opts, repo.Path, dir, langs, nil)
	files := make(map[string]*expressFile, len(sources))
	var order []string
	for _, s := range sources {
		files[s.rel] = parseExpressFile(s, sources)
		order = append(order, s.rel)
	}

	var routes []discovery.RouteInfo
	for _, rel := range order {
		f := files[rel]
		filePrefix := expressFilePrefix(files, order, rel, 0)
		for _, m := range expressRoute.FindAllStringSubmatchIndex(f.content, -1) {
			recv := f.content[m[2]:m[3]]
			if !f.routers[recv] && !expressDefaultReceivers[recv] {
				continue
			}
			sub := f.content[m[6]:m[7]]
			prefix := textscan.JoinURLPath(filePrefix, expressLocalPrefix(f, recv, 0))
			routes = append(routes, discovery.RouteInfo{
				Method:   strings.ToUpper(f.content[m[4]:m[5]]),
				Path:     sub,
				FullPath: textscan.JoinURLPath(prefix, sub),
				FilePath: RelPath(workspaceRoot, f.abs),
				Line:     textscan.LineAt(f.content, m[0]),
			})
		}
	}
	return routes
}

// parseExpressFile collects router declarations, relative imports and
// use() mounts. rel paths here are relative to the repo root.
func parseExpressFile(s sourceFile, all []sourceFile) *expressFile {
	f := &expressFile{sourceFile: s, routers: map[string]bool{}, imports: map[string]string{}}
	for _, m := range expressRouterDecl.FindAllStringSubmatch(s.content, -1) {
		f.routers[m[1]] = true
	}
	known := make(map[string]bool, len(all))
	for _, o := range all {
		known[o.rel] = true
	}
	for _, re := range []*regexp.Regexp{expressImport, expressRequire} {
		for _, m := range re.FindAllStringSubmatch(s.content, -1) {
			if target := resolveModule(path.Dir(s.rel), m[2], known); target != "" {
				f.imports[m[1]] = target
			}
		}
	}
	for _, m := range expressUse.FindAllStringSubmatch(s.content, -1) {
		f.mounts = append(f.mounts, expressMount{receiver: m[1], prefix: m[2], target: m[3]})
	}
	return f
}

// resolveModule maps an import specifier to a known source file.
func resolveModule(fromDir, spec string, known map[string]bool) string {
	base := path.Join(fromDir, spec)
	for _, cand := range []string{base, base + ".ts", base + ".js", base + "/index.ts", base + "/index.js"} {
		if known[cand] {
			return cand
		}
	}
	return ""
}

// expressLocalPrefix is the mount prefix of a router declared and mounted
// in the same file.
func expressLocalPrefix(f *expressFile, name string, depth int) string {
	if depth > 8 {
		return ""
	}
	for _, m := range f.mounts {
		if m.target == name && f.routers[name] {
			return textscan.JoinURLPath(expressLocalPrefix(f, m.receiver, depth+1), m.prefix)
		}
	}
	return ""
}

// expressFilePrefix is the prefix under which another file mounts the
// router exported by rel.
func expressFilePrefix(files map[string]*expressFile, order []string, rel string, depth int) string {
	if depth > 8 {
		return ""
	}
	for _, parentRel := range order {
		parent := files[parentRel]
		for _, m := range parent.mounts {
			if parent.imports[m.target] != rel {
				continue
			}
			outer := textscan.JoinURLPath(expressFilePrefix(files, order, parentRel, depth+1), expressLocalPrefix(parent, m.receiver, 0))
			return textscan.JoinURLPath(outer, m.prefix)
		}
	}
	return ""
}
