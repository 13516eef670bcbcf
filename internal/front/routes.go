package front

import (
	"regexp"
	"strings"
)

var (
	routePathsFiles = []string{"src/routes/routePaths.ts", "src/routes/routePaths.js"}
	routesFiles     = []string{"src/routes/Routes.tsx", "src/routes/Routes.jsx", "src/routes/index.tsx", "src/routes/index.ts"}

	routePathEntry = regexp.MustCompile("(\\w+)\\s*:\\s*['\"`]([^'\"`]+)['\"`]")
	// { path: routes.home, element: withLayout(Home) } or element: <Home />
	routeBlock      = regexp.MustCompile(`(?s)\{\s*path\s*:\s*routes\.(\w+)[^}]*?(?:withLayout\s*\(\s*(\w+)\s*\)|element\s*:\s*<\s*(\w+))`)
	componentImport = regexp.MustCompile(`import\s+(\w+)\s+from\s+['"](\.\.?/[^'"]+)['"]`)
)

// extractRoutes pairs the route keys of the routes module with the paths
// of the route-paths module. Keys without a path are dropped.
func extractRoutes(l layout) []Route {
	var paths map[string]string
	for _, rel := range routePathsFiles {
		if content, ok := l.read(rel); ok {
			paths = routePathMap(content)
			break
		}
	}
	if len(paths) == 0 {
		return nil
	}

	var routesRel, content string
	for _, rel := range routesFiles {
		if c, ok := l.read(rel); ok {
			routesRel, content = rel, c
			break
		}
	}
	if routesRel == "" {
		return nil
	}

	imports := map[string]string{}
	for _, m := range componentImport.FindAllStringSubmatch(content, -1) {
		imports[m[1]] = l.resolveImport(routesRel, m[2])
	}

	var routes []Route
	for _, m := range routeBlock.FindAllStringSubmatch(content, -1) {
		key, component := m[1], m[2]
		if component == "" {
			component = m[3]
		}
		p, ok := paths[key]
		if !ok {
			continue
		}
		src, ok := imports[component]
		if !ok {
			src = "src/pages/" + component + ".tsx"
		}
		routes = append(routes, Route{
			Path:          p,
			RouteKey:      key,
			ComponentName: component,
			SourcePath:    l.workspaceRel(src),
		})
	}
	return routes
}

func routePathMap(content string) map[string]string {
	out := map[string]string{}
	for _, m := range routePathEntry.FindAllStringSubmatch(content, -1) {
		out[m[1]] = strings.TrimSpace(m[2])
	}
	return out
}
