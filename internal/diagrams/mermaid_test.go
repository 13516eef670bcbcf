package diagrams

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/outbound"
)

func summary(repo, variant string) facts.Entry {
	return facts.New(facts.KindRepoSummary, repo, repo+"/package.json", repo, "", nil, facts.Meta{"variant": variant}, 0)
}

func mapping(from, to string, calls ...outbound.Call) facts.Entry {
	return facts.New(facts.KindEndpointMapping, from, "", from+" -> "+to, "", nil,
		facts.Meta{"fromRepo": from, "toService": to, "calls": calls}, 0)
}

func dependency(from, to string) facts.Entry {
	return facts.New(facts.KindDependency, from, "", from+" -> "+to, "", nil, facts.Meta{"toService": to}, 0)
}

func TestBuildGraph(t *testing.T) {
	entries := []facts.Entry{
		summary("svc-b", "nest"),
		summary("svc-a", "spring"),
		mapping("svc-b", "svc-a",
			outbound.Call{Method: "GET", Path: outbound.Literal("/v1/widgets")},
			outbound.Call{Method: "POST", Path: outbound.Literal("/v1/widgets")}),
		dependency("svc-b", "svc-a"),
		dependency("svc-a", "billing"),
	}

	g := BuildGraph(entries)

	wantNodes := []Node{{ID: "svc-b", Variant: "nest"}, {ID: "svc-a", Variant: "spring"}, {ID: "billing"}}
	if !reflect.DeepEqual(g.Nodes, wantNodes) {
		t.Errorf("nodes = %+v, want %+v", g.Nodes, wantNodes)
	}
	wantEdges := []Edge{{From: "svc-a", To: "billing"}, {From: "svc-b", To: "svc-a", Calls: 2}}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Errorf("edges = %+v, want %+v", g.Edges, wantEdges)
	}
}

func TestMermaid(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "svc-a", Variant: "nest"}, {ID: "svc.b"}},
		Edges: []Edge{{From: "svc-a", To: "svc.b", Calls: 1}, {From: "svc.b", To: "svc-a"}},
	}
	got := g.Mermaid()

	for _, want := range []string{
		"graph LR\n",
		`n_svc_a["svc-a<br/>nest"]`,
		`n_svc_b["svc.b"]`,
		"n_svc_a -->|1 call| n_svc_b",
		"n_svc_b -.-> n_svc_a",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestEmptyGraph(t *testing.T) {
	g := BuildGraph(nil)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("graph = %+v", g)
	}
	if got := g.Mermaid(); got != "graph LR\n" {
		t.Errorf("mermaid = %q", got)
	}
}

func TestEscapeMermaid(t *testing.T) {
	if got := escapeMermaid(`a "b" <c>`); got != "a #quot;b#quot; #lt;c#gt;" {
		t.Errorf("escapeMermaid = %q", got)
	}
}
