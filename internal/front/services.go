package front

import (
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/ziadkadry99/cortex/internal/textscan"
)

// servicesDir holds one module per backend service, each exporting async
// functions that wrap an API call.
const servicesDir = "src/services"

var (
	apiUrlsBlock  = regexp.MustCompile(`(?s)(?:const|let)\s+apiUrls\s*(?::\s*[\w<>,\s]+)?=\s*\{([^}]+)\}`)
	exportedAsync = regexp.MustCompile(`\bexport\s+(?:const\s+(\w+)\s*=\s*async\b|async\s+function\s+(\w+))`)
	paramList     = regexp.MustCompile(`\(([^)]*)\)\s*(?::\s*[^={]+?)?\s*(?:=>|\{)`)

	secureCall = regexp.MustCompile(`\bsecure(Get|Post|Put|Patch|Delete)\s*(?:<[^>()]*>)?\s*\(`)
	clientCall = regexp.MustCompile(`\b(?:axios|api|http|client)\s*\.\s*(get|post|put|patch|delete)\s*(?:<[^>()]*>)?\s*\(`)

	urlConst       = regexp.MustCompile(`(?s)(?:const|let)\s+url\s*=\s*([^;]+);`)
	urlAppend      = regexp.MustCompile("url\\s*\\+=\\s*`")
	firstAPIPath   = regexp.MustCompile("['\"`](/[^'\"`]*)['\"`]")
	secureCallArg  = regexp.MustCompile(`(?s)\bsecure(?:Get|Post|Put|Patch|Delete)\s*(?:<[^>()]*>)?\s*\(\s*([^,)]+?)\s*[,)]`)
	clientCallArg  = regexp.MustCompile(`(?s)\b(?:axios|api|http|client)\s*\.\s*(?:get|post|put|patch|delete)\s*(?:<[^>()]*>)?\s*\(\s*([^,)]+?)\s*[,)]`)
	apiUrlsRef     = regexp.MustCompile(`^apiUrls\.(\w+)$`)
	templateSubst  = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)
	plainIdent     = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*$`)
	quotedLiteral  = regexp.MustCompile("^['\"`]([^'\"`]*)['\"`]$")
	rawPathLiteral = regexp.MustCompile(`^/[^+]*$`)
)

// versionSegments stay literal when they appear as a variable name.
var versionSegments = map[string]bool{"v1": true, "v2": true, "v3": true, "api": true, "private": true, "public": true}

// extractEndpoints reads every module directly under src/services.
func extractEndpoints(l layout, opts Options) []Endpoint {
	entries, err := os.ReadDir(l.abs(servicesDir))
	if err != nil {
		return nil
	}
	var out []Endpoint
	for _, e := range entries {
		name := e.Name()
		ext := path.Ext(name)
		if e.IsDir() || (ext != ".ts" && ext != ".tsx") || strings.HasSuffix(name, ".d.ts") {
			continue
		}
		rel := servicesDir + "/" + name
		content, ok := l.read(rel)
		if !ok {
			opts.logger().Debug("front: reading service module", "file", rel)
			continue
		}
		out = append(out, serviceEndpoints(strings.TrimSuffix(name, ext), l.workspaceRel(rel), content)...)
	}
	return out
}

func serviceEndpoints(service, sourcePath, content string) []Endpoint {
	urls := apiURLs(content)
	var out []Endpoint
	for _, fn := range exportedFunctions(content) {
		method := detectHTTPMethod(fn.body)
		if method == "" {
			continue
		}
		pattern := "/"
		if expr := urlExpression(fn.body); expr != "" {
			pattern = urlExpressionToPattern(expr, urls)
		}
		if pattern == "/" {
			continue
		}
		out = append(out, Endpoint{
			ServiceName: service,
			MethodName:  fn.name,
			HTTPMethod:  method,
			PathPattern: pattern,
			SourcePath:  sourcePath,
			ParamNames:  fn.params,
		})
	}
	return out
}

func apiURLs(content string) map[string]string {
	out := map[string]string{}
	m := apiUrlsBlock.FindStringSubmatch(content)
	if m == nil {
		return out
	}
	for _, pm := range routePathEntry.FindAllStringSubmatch(m[1], -1) {
		out[pm[1]] = strings.TrimSpace(pm[2])
	}
	return out
}

type exportedFunc struct {
	name   string
	body   string
	params []string
}

// exportedFunctions splits content at each exported async function and
// returns the brace-delimited body of each.
func exportedFunctions(content string) []exportedFunc {
	locs := exportedAsync.FindAllStringSubmatchIndex(content, -1)
	var out []exportedFunc
	for i, loc := range locs {
		stop := len(content)
		if i+1 < len(locs) {
			stop = locs[i+1][0]
		}
		block := content[loc[0]:stop]
		name := submatch(content, loc, 1)
		if name == "" {
			name = submatch(content, loc, 2)
		}
		open := strings.IndexByte(block, '{')
		if open < 0 {
			continue
		}
		end := textscan.FindMatchingDelimiter(block, open)
		if end < 0 {
			end = len(block)
		}
		out = append(out, exportedFunc{name: name, body: block[open+1 : end], params: paramNames(block)})
	}
	return out
}

func paramNames(block string) []string {
	m := paramList.FindStringSubmatch(block)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(m[1], ",") {
		p = strings.TrimSpace(p)
		if i := strings.IndexAny(p, " \t:?="); i >= 0 {
			p = p[:i]
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func detectHTTPMethod(body string) string {
	if m := secureCall.FindStringSubmatch(body); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := clientCall.FindStringSubmatch(body); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// urlExpression finds the expression a function passes as its URL.
func urlExpression(body string) string {
	if m := urlConst.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	if urlAppend.MatchString(body) {
		if m := firstAPIPath.FindStringSubmatch(body); m != nil {
			return "'" + m[1] + "'"
		}
		return ""
	}
	if m := secureCallArg.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := clientCallArg.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// urlExpressionToPattern turns apiUrls.items + id + '/history' into
// /<items url>/:id/history. Query strings are dropped.
func urlExpressionToPattern(expr string, urls map[string]string) string {
	expr = strings.TrimSpace(expr)
	if m := apiUrlsRef.FindStringSubmatch(expr); m != nil {
		return normalizePathPattern(stripQuery(urls[m[1]]))
	}
	var parts []string
	for _, seg := range expressionSegments(expr, urls) {
		lit, isLit := "", false
		switch {
		case seg == "":
			continue
		case quotedLiteral.MatchString(seg):
			lit, isLit = quotedLiteral.FindStringSubmatch(seg)[1], true
		case rawPathLiteral.MatchString(seg):
			lit, isLit = seg, true
		case plainIdent.MatchString(seg):
			name := seg[strings.LastIndexByte(seg, '.')+1:]
			if name == "undefined" || name == "null" || strings.HasPrefix(seg, "apiUrls.") {
				continue
			}
			parts = append(parts, ":"+name)
		}
		if !isLit {
			continue
		}
		parts = appendLiteral(parts, lit)
		// Everything after the query string starts is a parameter value.
		if strings.Contains(lit, "?") {
			break
		}
	}
	return normalizePathPattern(textscan.JoinURLPath("", strings.Join(parts, "/")))
}

// expressionSegments splits a concatenation on "+", expanding template
// literals into literal and variable segments.
func expressionSegments(expr string, urls map[string]string) []string {
	var out []string
	for _, seg := range strings.Split(expr, "+") {
		seg = strings.TrimSpace(seg)
		if m := apiUrlsRef.FindStringSubmatch(seg); m != nil {
			if v, ok := urls[m[1]]; ok {
				out = append(out, "'"+v+"'")
			}
			continue
		}
		if len(seg) >= 2 && seg[0] == '`' && seg[len(seg)-1] == '`' {
			out = append(out, templateSegments(seg[1:len(seg)-1], urls)...)
			continue
		}
		out = append(out, seg)
	}
	return out
}

func templateSegments(tpl string, urls map[string]string) []string {
	var out []string
	last := 0
	for _, m := range templateSubst.FindAllStringSubmatchIndex(tpl, -1) {
		if m[0] > last {
			out = append(out, "'"+tpl[last:m[0]]+"'")
		}
		inner := tpl[m[2]:m[3]]
		if am := apiUrlsRef.FindStringSubmatch(inner); am != nil {
			if v, ok := urls[am[1]]; ok {
				out = append(out, "'"+v+"'")
			}
		} else {
			out = append(out, inner)
		}
		last = m[1]
	}
	if last < len(tpl) {
		out = append(out, "'"+tpl[last:]+"'")
	}
	return out
}

func appendLiteral(parts []string, lit string) []string {
	lit = strings.Trim(stripQuery(lit), "/")
	if lit == "" {
		return parts
	}
	return append(parts, lit)
}

func stripQuery(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// normalizePathPattern keeps version-like segments literal even when they
// came from a variable.
func normalizePathPattern(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	segs := strings.Split(strings.Trim(p, "/"), "/")
	out := segs[:0]
	for _, s := range segs {
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, ":") && versionSegments[s[1:]] {
			s = s[1:]
		}
		out = append(out, s)
	}
	return "/" + strings.Join(out, "/")
}

func submatch(s string, m []int, g int) string {
	if 2*g+1 >= len(m) || m[2*g] < 0 {
		return ""
	}
	return s[m[2*g]:m[2*g+1]]
}
