package front

import "regexp"

var relativeImport = regexp.MustCompile(`import\s+(?:\{[^}]*\}|\w+|\*\s+as\s+\w+)\s+from\s+['"](\.\.?/[^'"]+)['"]`)

// buildRouteEndpoints resolves, for each route, the endpoints used by its
// page file and the files the page imports directly. Endpoints keep the
// order in which their methods are first seen.
func buildRouteEndpoints(l layout, routes []Route, usages []Usage, index map[string]MethodEndpoint) []RouteEndpoints {
	var out []RouteEndpoints
	for _, r := range routes {
		page := l.repoRel(r.SourcePath)
		files := map[string]bool{page: true}
		if content, ok := l.read(page); ok {
			for _, m := range relativeImport.FindAllStringSubmatch(content, -1) {
				files[l.resolveImport(page, m[1])] = true
			}
		}

		seen := map[string]bool{}
		eps := []MethodEndpoint{}
		for _, u := range usages {
			if !files[l.repoRel(u.SourcePath)] {
				continue
			}
			for _, name := range u.InvokedMethods {
				ep, ok := index[name]
				if !ok || seen[name] {
					continue
				}
				seen[name] = true
				eps = append(eps, ep)
			}
		}
		out = append(out, RouteEndpoints{Route: r, Endpoints: eps})
	}
	return out
}
