package aggregate

import (
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
)

// Glossary term kinds.
const (
	TermRoute = "route"
	TermDTO   = "dto"
)

// Term is a domain word derived from a repo's routes.
type Term struct {
	Term       string
	Kind       string
	SourcePath string
	Line       int
}

// GlossaryFromRoutes derives terms from route path segments and from the
// request and response type names. Terms are unique per repo.
func GlossaryFromRoutes(routes []discovery.RouteInfo) []Term {
	seen := map[string]bool{}
	var out []Term
	add := func(term, kind string, r discovery.RouteInfo) {
		if len(term) <= 2 || seen[term] {
			return
		}
		seen[term] = true
		out = append(out, Term{Term: term, Kind: kind, SourcePath: r.FilePath, Line: r.Line})
	}
	for _, r := range routes {
		for _, t := range pathTerms(r.FullPath) {
			add(t, TermRoute, r)
		}
		add(r.RequestType, TermDTO, r)
		add(r.ResponseType, TermDTO, r)
	}
	return out
}

// pathTerms keeps each literal segment with hyphens and underscores as
// spaces, plus its trailing-s singular.
func pathTerms(fullPath string) []string {
	var out []string
	for _, seg := range strings.Split(fullPath, "/") {
		if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "{") || isDigits(seg) {
			continue
		}
		out = append(out, strings.NewReplacer("-", " ", "_", " ").Replace(seg))
		out = append(out, strings.ReplaceAll(strings.TrimSuffix(seg, "s"), "-", " "))
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
