package front

import (
	"path"
	"regexp"
	"strings"
)

var (
	serviceImport = regexp.MustCompile(`import\s+(?:\{[^}]*\}|\w+|\*\s+as\s+\w+)\s+from\s+['"][^'"]*/services/([^'"/]+)['"]`)
	apiPathUsage  = regexp.MustCompile("['\"`](/(?:api|v\\d+)/[^'\"`\\s]+)['\"`]")
)

// extractUsages scans every source file under src for service-module
// imports and API path literals. methods lists each service's exported
// method names, used to record which of them a file invokes.
func extractUsages(l layout, opts Options, methods map[string][]string) []Usage {
	var out []Usage
	for _, f := range l.sources(opts, "src", nil) {
		services := uniqueSubmatches(serviceImport, f.content)
		literals := uniqueSubmatches(apiPathUsage, f.content)
		if len(services) == 0 && len(literals) == 0 {
			continue
		}
		src := l.workspaceRel(f.repoRel)
		for _, svc := range services {
			svc = strings.TrimSuffix(svc, path.Ext(svc))
			out = append(out, Usage{
				SourcePath:     src,
				ServiceName:    svc,
				InvokedMethods: invokedMethods(f.content, methods[svc]),
			})
		}
		for _, lit := range literals {
			p := stripQuery(lit)
			segs := strings.Split(strings.Trim(p, "/"), "/")
			if len(segs) < 2 {
				continue
			}
			out = append(out, Usage{SourcePath: src, PathFragment: segs[len(segs)-1], URLLiteral: p})
		}
	}
	return out
}

func invokedMethods(content string, names []string) []string {
	var out []string
	for _, name := range names {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
		if re.MatchString(content) {
			out = append(out, name)
		}
	}
	return out
}

func uniqueSubmatches(re *regexp.Regexp, content string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}
