package routes

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

const springWindow = 400

// SpringSourceDirs are scanned for controllers, relative to the repo.
var SpringSourceDirs = []string{"src/main/kotlin", "src/main/java"}

var (
	springController     = regexp.MustCompile(`@(?:Rest)?Controller\b`)
	springClassDecl      = regexp.MustCompile(`\bclass\s+\w+`)
	springRequestMapping = regexp.MustCompile(`@RequestMapping\b(?:\s*\(([^)]*)\))?`)
	springValueArg       = regexp.MustCompile(`(?:value|path)\s*=\s*\[?\s*(?:arrayOf\s*\(\s*)?\{?\s*["']([^"']*)["']`)
	springQuotedArg      = regexp.MustCompile(`["']([^"']*)["']`)
	springRequestMethod  = regexp.MustCompile(`RequestMethod\.(GET|POST|PUT|PATCH|DELETE)`)

	springKotlinFun  = regexp.MustCompile(`\bfun\s+(\w+)\s*\(`)
	springKotlinRet  = regexp.MustCompile(`^\s*:\s*([\w.<>?,\s]+?)\s*(?:\{|=|\n|$)`)
	springJavaMethod = regexp.MustCompile(`(?m)^\s*(?:public|protected|private)\s+(?:static\s+)?(?:final\s+)?([\w.<>\[\]?, ]+?)\s+(\w+)\s*\(`)
	springKotlinBody = regexp.MustCompile(`@RequestBody\s+(?:@\w+(?:\([^)]*\))?\s+)*(\w+)\s*:\s*([\w.<>?]+)`)
	springJavaBody   = regexp.MustCompile(`@RequestBody\s+(?:@\w+(?:\([^)]*\))?\s+)*(?:final\s+)?([\w.<>]+)\s+\w+`)
)

type springMapping struct {
	re     *regexp.Regexp
	method string
}

// springMappings holds one annotation pattern per verb; each tolerates the
// bare, direct-string and value = [...] forms.
var springMappings = []springMapping{
	{regexp.MustCompile(`@GetMapping\b(?:\s*\(([^)]*)\))?`), "GET"},
	{regexp.MustCompile(`@PostMapping\b(?:\s*\(([^)]*)\))?`), "POST"},
	{regexp.MustCompile(`@PutMapping\b(?:\s*\(([^)]*)\))?`), "PUT"},
	{regexp.MustCompile(`@PatchMapping\b(?:\s*\(([^)]*)\))?`), "PATCH"},
	{regexp.MustCompile(`@DeleteMapping\b(?:\s*\(([^)]*)\))?`), "DELETE"},
}

// SpringExtractor reads Kotlin and Java controllers.
type SpringExtractor struct {
	opts Options
}

func (x *SpringExtractor) ExtractRoutes(repo discovery.Repo, workspaceRoot string) []discovery.RouteInfo {
	var routes []discovery.RouteInfo
	for _, d := range SpringSourceDirs {
		dir := filepath.Join(repo.Path, filepath.FromSlash(d))
		for _, f := range readSources(x.opts, workspaceRoot, dir, []string{walker.LangKotlin, walker.LangJava}, nil) {
			if !springController.MatchString(f.content) {
				continue
			}
			routes = append(routes, springRoutes(f)...)
		}
	}
	return routes
}

type springHit struct {
	start, end int
	method     string
	args       string
}

func springRoutes(f sourceFile) []discovery.RouteInfo {
	classAt := len(f.content)
	if loc := springClassDecl.FindStringIndex(f.content); loc != nil {
		classAt = loc[0]
	}

	var base string
	var hits []springHit
	for _, m := range springRequestMapping.FindAllStringSubmatchIndex(f.content, -1) {
		args := submatch(f.content, m, 1)
		if m[0] < classAt {
			if base == "" {
				base = annotationPath(args)
			}
			continue
		}
		// Method-level @RequestMapping only counts when it names a verb.
		if rm := springRequestMethod.FindStringSubmatch(args); rm != nil {
			hits = append(hits, springHit{m[0], m[1], rm[1], args})
		}
	}
	for _, sm := range springMappings {
		for _, m := range sm.re.FindAllStringSubmatchIndex(f.content, -1) {
			if m[0] < classAt {
				continue
			}
			hits = append(hits, springHit{m[0], m[1], sm.method, submatch(f.content, m, 1)})
		}
	}
	sortHits(hits)

	kotlin := strings.HasSuffix(f.rel, ".kt") || strings.HasSuffix(f.rel, ".kts")
	var routes []discovery.RouteInfo
	for i, h := range hits {
		sub := annotationPath(h.args)
		end := h.end + springWindow
		if i+1 < len(hits) && hits[i+1].start < end {
			end = hits[i+1].start
		}
		if end > len(f.content) {
			end = len(f.content)
		}
		window := f.content[h.end:end]

		r := discovery.RouteInfo{
			Method:   h.method,
			Path:     sub,
			FullPath: textscan.JoinURLPath(base, sub),
			FilePath: f.rel,
			Line:     textscan.LineAt(f.content, h.start),
		}
		if kotlin {
			fillKotlinSignature(&r, window)
		} else {
			fillJavaSignature(&r, window)
		}
		routes = append(routes, r)
	}
	return routes
}

func submatch(s string, m []int, group int) string {
	if 2*group+1 >= len(m) || m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

func sortHits(hits []springHit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
}

// annotationPath returns the path named by annotation arguments, preferring
// value = / path = over the first string literal.
func annotationPath(args string) string {
	if m := springValueArg.FindStringSubmatch(args); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := springQuotedArg.FindStringSubmatch(args); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func fillKotlinSignature(r *discovery.RouteInfo, window string) {
	loc := springKotlinFun.FindStringSubmatchIndex(window)
	if loc == nil {
		return
	}
	r.HandlerName = window[loc[2]:loc[3]]
	open := loc[1] - 1
	close := textscan.FindMatchingDelimiter(window, open)
	if close < 0 {
		return
	}
	params := window[open:close]
	if bm := springKotlinBody.FindStringSubmatch(params); bm != nil {
		r.RequestType = strings.TrimSuffix(bm[2], "?")
	}
	if rm := springKotlinRet.FindStringSubmatch(window[close+1:]); rm != nil {
		r.ResponseType = unwrapResponseEntity(rm[1])
	}
}

func fillJavaSignature(r *discovery.RouteInfo, window string) {
	loc := springJavaMethod.FindStringSubmatchIndex(window)
	if loc == nil {
		return
	}
	r.ResponseType = unwrapResponseEntity(window[loc[2]:loc[3]])
	r.HandlerName = window[loc[4]:loc[5]]
	open := loc[1] - 1
	close := textscan.FindMatchingDelimiter(window, open)
	if close < 0 {
		return
	}
	if bm := springJavaBody.FindStringSubmatch(window[open:close]); bm != nil {
		r.RequestType = bm[1]
	}
}

// unwrapResponseEntity turns "ResponseEntity<List<Foo>>" into "List<Foo>".
func unwrapResponseEntity(t string) string {
	t = strings.TrimSuffix(strings.TrimSpace(t), "?")
	const prefix = "ResponseEntity"
	if !strings.HasPrefix(t, prefix) {
		return t
	}
	open := strings.IndexByte(t, '<')
	if open < 0 {
		return ""
	}
	close := textscan.FindMatchingDelimiter(t, open)
	if close < 0 {
		return ""
	}
	return strings.TrimSpace(t[open+1 : close])
}
