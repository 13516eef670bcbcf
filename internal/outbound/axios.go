package outbound

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

const configGet = `(?:this\s*\.\s*)?config(?:Service)?\s*\.\s*get(?:OrThrow)?\s*(?:<[^>()]*>)?\s*\(\s*['"]([A-Za-z_][\w.]*)['"]`

var (
	// createAxiosInstance({ baseURL: config.get('SVC_A_URL') }) and axios.create({...}).
	axiosBaseURL = regexp.MustCompile(`(?s)(?:createAxiosInstance|axios\s*\.\s*create)\s*\(\s*\{[^}]*?baseURL\s*:\s*(?:` +
		configGet + `|process\.env\.([A-Za-z_]\w*)|process\.env\[\s*['"]([A-Za-z_]\w*)['"]\s*\])`)

	// private readonly pathWidgets = this.config.get('WIDGETS_PATH')
	axiosPathVar = regexp.MustCompile(`(?:this\s*\.\s*)?([A-Za-z_$][\w$]*)\s*(?::\s*[\w<>]+\s*)?=\s*` + configGet)

	axiosReceiver = `(?:this\s*\.\s*)?\w*(?:axios|Axios|client|Client|http|Http)\w*\s*\.\s*(get|post|put|patch|delete)\s*(?:<[^>()]*>)?\s*\(\s*`

	axiosLiteralCall  = regexp.MustCompile(axiosReceiver + `(?:'([^'\n]*)'|"([^"\n]*)")\s*[,)+]`)
	axiosTemplateCall = regexp.MustCompile(axiosReceiver + "`([^`]*)`")
	axiosVarCall      = regexp.MustCompile(axiosReceiver + `(?:this\s*\.\s*)?([A-Za-z_$][\w$]*)\s*[,)]`)
)

// AxiosResolver reads axios-style clients in the TypeScript and JavaScript
// sources under src. A file contributes a mapping when it builds a client
// whose base URL comes from a configuration key naming another repo.
type AxiosResolver struct {
	opts Options
}

func (a *AxiosResolver) Resolve(repo discovery.Repo, workspaceRoot string, repoIDs []string) []Mapping {
	dir := filepath.Join(repo.Path, "src")
	var mappings []Mapping
	for _, f := range readSources(a.opts, workspaceRoot, dir, []string{walker.LangTypeScript, walker.LangJavaScript}) {
		if !strings.Contains(f.content, "xios") {
			continue
		}
		key := axiosBaseKey(f.content)
		if key == "" {
			continue
		}
		target := a.opts.resolve(key, repoIDs)
		if target == "" || target == repo.ID {
			continue
		}
		calls := axiosCalls(f.content)
		if len(calls) == 0 {
			continue
		}
		mappings = append(mappings, Mapping{
			FromRepo:  repo.ID,
			ToService: target,
			EnvVar:    key,
			FilePath:  f.rel,
			Calls:     calls,
		})
	}
	return mappings
}

func axiosBaseKey(content string) string {
	m := axiosBaseURL.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

type axiosHit struct {
	pos    int
	method string
	path   PathSpec
}

// axiosCalls returns the file's calls in source order.
func axiosCalls(content string) []Call {
	pathKeys := map[string]string{}
	for _, m := range axiosPathVar.FindAllStringSubmatch(content, -1) {
		if _, ok := pathKeys[m[1]]; !ok {
			pathKeys[m[1]] = m[2]
		}
	}

	var hits []axiosHit
	for _, m := range axiosLiteralCall.FindAllStringSubmatchIndex(content, -1) {
		p := group(content, m, 2)
		if p == "" {
			p = group(content, m, 3)
		}
		hits = append(hits, axiosHit{m[0], strings.ToUpper(group(content, m, 1)), Literal(p)})
	}
	for _, m := range axiosTemplateCall.FindAllStringSubmatchIndex(content, -1) {
		p := strings.TrimSpace(textscan.CollapseSlashes(textscan.StripInterpolations(group(content, m, 2), false)))
		if p == "" {
			continue
		}
		hits = append(hits, axiosHit{m[0], strings.ToUpper(group(content, m, 1)), Literal(p)})
	}
	for _, m := range axiosVarCall.FindAllStringSubmatchIndex(content, -1) {
		name := group(content, m, 2)
		key, ok := pathKeys[name]
		if !ok {
			key = name
		}
		hits = append(hits, axiosHit{m[0], strings.ToUpper(group(content, m, 1)), Key(key)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var set callSet
	for _, h := range hits {
		set.add(h.method, h.path)
	}
	return set.calls
}

func group(s string, m []int, g int) string {
	if 2*g+1 >= len(m) || m[2*g] < 0 {
		return ""
	}
	return s[m[2*g]:m[2*g+1]]
}
