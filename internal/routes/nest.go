package routes

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// nestWindow is how far past a route decorator the handler signature is
// looked for.
const nestWindow = 800

var (
	nestController = regexp.MustCompile("@Controller\\(\\s*(?:['\"`]([^'\"`]*)['\"`]|\\{[^}]*?path\\s*:\\s*['\"`]([^'\"`]*)['\"`][^}]*\\})?\\s*\\)")
	nestMethod     = regexp.MustCompile("@(Get|Post|Put|Patch|Delete|Options|Head|All)\\(\\s*(?:['\"`]([^'\"`]*)['\"`])?\\s*\\)")
	nestBody       = regexp.MustCompile(`@Body\([^)]*\)[^:,)]*:\s*([A-Za-z_$][\w$.]*)`)
	nestHandler    = regexp.MustCompile(`(?m)^\s*(?:(?:public|private|protected|static|async)\s+)*([A-Za-z_$][\w$]*)\s*\(`)
	nestPromise    = regexp.MustCompile(`\)\s*:\s*Promise\s*<`)
)

// NestExtractor reads *.controller.ts files under the repo's controller root.
type NestExtractor struct {
	opts Options
}

func (x *NestExtractor) ExtractRoutes(repo discovery.Repo, workspaceRoot string) []discovery.RouteInfo {
	dir := filepath.Join(repo.Path, filepath.FromSlash(repo.ControllerPath))
	isController := func(rel string) bool { return strings.HasSuffix(rel, ".controller.ts") }

	var routes []discovery.RouteInfo
	for _, f := range readSources(x.opts, workspaceRoot, dir, []string{walker.LangTypeScript}, isController) {
		routes = append(routes, nestRoutes(f)...)
	}
	return routes
}

func nestRoutes(f sourceFile) []discovery.RouteInfo {
	base := ""
	if m := nestController.FindStringSubmatch(f.content); m != nil {
		base = strings.TrimSpace(m[1] + m[2])
	}

	matches := nestMethod.FindAllStringSubmatchIndex(f.content, -1)
	var routes []discovery.RouteInfo
	for i, m := range matches {
		sub := ""
		if m[4] >= 0 {
			sub = strings.TrimSpace(f.content[m[4]:m[5]])
		}
		method := strings.ToUpper(f.content[m[2]:m[3]])

		end := m[1] + nestWindow
		if i+1 < len(matches) && matches[i+1][0] < end {
			end = matches[i+1][0]
		}
		if end > len(f.content) {
			end = len(f.content)
		}
		window := f.content[m[1]:end]

		r := discovery.RouteInfo{
			Method:   method,
			Path:     sub,
			FullPath: textscan.JoinURLPath(base, sub),
			FilePath: f.rel,
			Line:     textscan.LineAt(f.content, m[0]),
		}
		if hm := nestHandler.FindStringSubmatchIndex(window); hm != nil {
			r.HandlerName = window[hm[2]:hm[3]]
			sig := window[hm[1]-1:]
			if bm := nestBody.FindStringSubmatch(sig); bm != nil {
				r.RequestType = bm[1]
			}
			r.ResponseType = promiseType(sig)
		}
		routes = append(routes, r)
	}
	return routes
}

// promiseType returns T from the first "): Promise<T>" in sig.
func promiseType(sig string) string {
	loc := nestPromise.FindStringIndex(sig)
	if loc == nil {
		return ""
	}
	open := loc[1] - 1
	close := textscan.FindMatchingDelimiter(sig, open)
	if close < 0 {
		return ""
	}
	return strings.TrimSpace(sig[open+1 : close])
}
