// Package diagrams renders the cross-service call graph as Mermaid.
package diagrams

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/outbound"
)

// Node is one repo in the graph.
type Node struct {
	ID      string
	Variant string
}

// Edge is a caller to callee relationship. Calls is zero for a dependency
// seen only in configuration.
type Edge struct {
	From  string
	To    string
	Calls int
}

// Graph is the service call graph of a workspace.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// BuildGraph derives the graph from repo_summary, endpoint_mapping and
// dependency facts. Edges are sorted by caller then callee; a dependency
// with a mapping for the same pair is folded into it.
func BuildGraph(entries []facts.Entry) Graph {
	var g Graph
	known := map[string]bool{}
	edges := map[[2]string]*Edge{}
	addEdge := func(from, to string, calls int) {
		if from == "" || to == "" {
			return
		}
		key := [2]string{from, to}
		if e, ok := edges[key]; ok {
			e.Calls += calls
			return
		}
		edges[key] = &Edge{From: from, To: to, Calls: calls}
	}

	for _, e := range entries {
		switch e.Kind {
		case facts.KindRepoSummary:
			if !known[e.Source] {
				known[e.Source] = true
				g.Nodes = append(g.Nodes, Node{ID: e.Source, Variant: e.MetaString("variant")})
			}
		case facts.KindEndpointMapping:
			from := e.MetaString("fromRepo")
			if from == "" {
				from = e.Source
			}
			var calls []outbound.Call
			_ = e.DecodeMeta("calls", &calls)
			addEdge(from, e.MetaString("toService"), len(calls))
		case facts.KindDependency:
			addEdge(e.Source, e.MetaString("toService"), 0)
		}
	}

	for _, e := range edges {
		g.Edges = append(g.Edges, *e)
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	for _, e := range g.Edges {
		for _, id := range []string{e.From, e.To} {
			if !known[id] {
				known[id] = true
				g.Nodes = append(g.Nodes, Node{ID: id})
			}
		}
	}
	return g
}

// Mermaid renders the graph as a left-to-right flowchart. Configuration-only
// dependencies are dashed.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, n := range g.Nodes {
		id := sanitizeID(n.ID)
		if n.Variant != "" {
			fmt.Fprintf(&b, "    %s[\"%s<br/>%s\"]\n", id, escapeMermaid(n.ID), escapeMermaid(n.Variant))
		} else {
			fmt.Fprintf(&b, "    %s[\"%s\"]\n", id, escapeMermaid(n.ID))
		}
	}

	for _, e := range g.Edges {
		from, to := sanitizeID(e.From), sanitizeID(e.To)
		switch e.Calls {
		case 0:
			fmt.Fprintf(&b, "    %s -.-> %s\n", from, to)
		case 1:
			fmt.Fprintf(&b, "    %s -->|1 call| %s\n", from, to)
		default:
			fmt.Fprintf(&b, "    %s -->|%d calls| %s\n", from, e.Calls, to)
		}
	}

	return b.String()
}

// sanitizeID converts a string into a safe mermaid node ID.
func sanitizeID(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		".", "_",
		"-", "_",
		" ", "_",
		"@", "_",
		":", "_",
	)
	return "n_" + replacer.Replace(s)
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
