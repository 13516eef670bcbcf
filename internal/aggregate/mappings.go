package aggregate

import (
	"slices"

	"github.com/ziadkadry99/cortex/internal/outbound"
)

// Edge is every call one repo makes to another, merged across files.
type Edge struct {
	FromRepo  string          `json:"fromRepo"`
	ToService string          `json:"toService"`
	EnvVar    string          `json:"envVar"`
	FilePaths []string        `json:"filePaths"`
	Calls     []outbound.Call `json:"calls"`
}

// MergeMappings folds mappings into one edge per (from, to) pair, in order
// of first appearance. File paths are unioned and calls de-duplicated by
// method and path, so merging the same mapping twice changes nothing. The
// first mapping of a pair supplies the env var.
func MergeMappings(mappings []outbound.Mapping) []Edge {
	index := map[[2]string]int{}
	var edges []Edge
	seen := []map[string]bool{}
	for _, m := range mappings {
		key := [2]string{m.FromRepo, m.ToService}
		i, ok := index[key]
		if !ok {
			i = len(edges)
			index[key] = i
			edges = append(edges, Edge{FromRepo: m.FromRepo, ToService: m.ToService, EnvVar: m.EnvVar, FilePaths: []string{}, Calls: []outbound.Call{}})
			seen = append(seen, map[string]bool{})
		}
		e := &edges[i]
		if !slices.Contains(e.FilePaths, m.FilePath) {
			e.FilePaths = append(e.FilePaths, m.FilePath)
		}
		for _, c := range m.Calls {
			k := c.DedupeKey()
			if seen[i][k] {
				continue
			}
			seen[i][k] = true
			e.Calls = append(e.Calls, c)
		}
	}
	return edges
}

// folds reports whether a service call is already represented by an edge:
// same target, read from a file the edge was built from.
func folds(edges []Edge, c outbound.ServiceCall) bool {
	for _, e := range edges {
		if e.FromRepo == c.FromRepo && e.ToService == c.ToService && slices.Contains(e.FilePaths, c.FilePath) {
			return true
		}
	}
	return false
}
