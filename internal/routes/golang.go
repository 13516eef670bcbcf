package routes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// maxGoPathLen drops implausible matches such as long string literals.
const maxGoPathLen = 400

var (
	goVerbCall  = regexp.MustCompile("(?:(\\w+)\\s*)?\\.\\s*(Get|Post|Put|Patch|Delete|Options|Head|GET|POST|PUT|PATCH|DELETE|OPTIONS|HEAD)\\s*\\(\\s*[\"`](/[^\"`]*)[\"`]")
	goHandle    = regexp.MustCompile("(?:(\\w+)\\s*)?\\.\\s*(?:HandleFunc|Handle)\\s*\\(\\s*[\"`]([^\"`]+)[\"`]")
	goMethods   = regexp.MustCompile(`\.\s*Methods\s*\(([^)]*)\)`)
	goQuoted    = regexp.MustCompile("[\"`]([^\"`]+)[\"`]")
	goRouteFunc = regexp.MustCompile("\\.\\s*Route\\s*\\(\\s*[\"`]([^\"`]+)[\"`]\\s*,\\s*func\\s*\\([^)]*\\)\\s*\\{")
	goGroupVar  = regexp.MustCompile("(\\w+)\\s*:?=\\s*(\\w+)\\s*\\.\\s*(?:Group|PathPrefix)\\s*\\(\\s*[\"`]([^\"`]+)[\"`]")
	goPattern   = regexp.MustCompile(`^(GET|POST|PUT|PATCH|DELETE|OPTIONS|HEAD)\s+(\S+)$`)
)

// GoExtractor recognises chi, echo, gin, gorilla/mux and net/http
// registrations.
type GoExtractor struct {
	opts Options
}

func (x *GoExtractor) ExtractRoutes(repo discovery.Repo, workspaceRoot string) []discovery.RouteInfo {
	files := readSources(x.opts, workspaceRoot, repo.Path, []string{walker.LangGo}, nil)

	var routes []discovery.RouteInfo
	for _, f := range files {
		routes = append(routes, goRoutes(f)...)
	}
	return Dedupe(routes)
}

type prefixSpan struct {
	start, end int
	prefix     string
}

func goRoutes(f sourceFile) []discovery.RouteInfo {
	c := f.content

	var spans []prefixSpan
	for _, m := range goRouteFunc.FindAllStringSubmatchIndex(c, -1) {
		open := m[1] - 1
		close := textscan.FindMatchingDelimiter(c, open)
		if close < 0 {
			continue
		}
		spans = append(spans, prefixSpan{open, close, c[m[2]:m[3]]})
	}

	groups := map[string][2]string{} // var -> {parent, prefix}
	for _, m := range goGroupVar.FindAllStringSubmatch(c, -1) {
		groups[m[1]] = [2]string{m[2], m[3]}
	}

	// prefixAt resolves Route blocks enclosing offset, else the receiver's
	// Group/PathPrefix chain.
	prefixAt := func(offset int, recv string) string {
		var parts []string
		for _, s := range spans {
			if offset > s.start && offset < s.end {
				parts = append(parts, s.prefix)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "/")
		}
		var chain []string
		for depth := 0; recv != "" && depth < 8; depth++ {
			g, ok := groups[recv]
			if !ok {
				break
			}
			chain = append([]string{g[1]}, chain...)
			recv = g[0]
		}
		return strings.Join(chain, "/")
	}

	var routes []discovery.RouteInfo
	add := func(method, prefix, sub string, offset int) {
		full := textscan.JoinURLPath(prefix, strings.TrimSpace(sub))
		if len(full) > maxGoPathLen {
			return
		}
		routes = append(routes, discovery.RouteInfo{
			Method:   strings.ToUpper(method),
			Path:     sub,
			FullPath: full,
			FilePath: f.rel,
			Line:     textscan.LineAt(c, offset),
		})
	}

	for _, m := range goVerbCall.FindAllStringSubmatchIndex(c, -1) {
		recv := submatch(c, m, 1)
		add(c[m[4]:m[5]], prefixAt(m[0], recv), c[m[6]:m[7]], m[0])
	}

	handles := goHandle.FindAllStringSubmatchIndex(c, -1)
	methods := goMethods.FindAllStringSubmatchIndex(c, -1)
	for i, m := range handles {
		path := strings.TrimSpace(c[m[4]:m[5]])
		prefix := prefixAt(m[0], submatch(c, m, 1))

		// Go 1.22 patterns carry the method: "GET /items/{id}".
		if pm := goPattern.FindStringSubmatch(path); pm != nil {
			add(pm[1], prefix, pm[2], m[0])
			continue
		}
		if !strings.HasPrefix(path, "/") {
			continue
		}

		limit := len(c)
		if i+1 < len(handles) {
			limit = handles[i+1][0]
		}
		verbs := nearestMethods(c, methods, m[1], limit)
		if len(verbs) == 0 {
			add("GET", prefix, path, m[0])
			continue
		}
		for _, v := range verbs {
			add(v, prefix, path, m[0])
		}
	}

	sort.SliceStable(routes, func(i, j int) bool { return routes[i].Line < routes[j].Line })
	return routes
}

// nearestMethods returns the verbs of the first .Methods(...) call that
// starts after from and before limit.
func nearestMethods(c string, methods [][]int, from, limit int) []string {
	for _, mm := range methods {
		if mm[0] < from {
			continue
		}
		if mm[0] >= limit {
			return nil
		}
		var verbs []string
		for _, q := range goQuoted.FindAllStringSubmatch(c[mm[2]:mm[3]], -1) {
			verbs = append(verbs, strings.ToUpper(strings.TrimSpace(q[1])))
		}
		return verbs
	}
	return nil
}
