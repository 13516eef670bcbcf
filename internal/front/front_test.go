package front

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

var webApp = map[string]string{
	"src/routes/routePaths.ts": `export const routes = {
  home: '/',
  widgetDetail: '/widgets/:id',
  orphan: '/orphan',
};
`,
	"src/routes/Routes.tsx": `import Home from '../pages/Home';
import WidgetDetail from '../pages/WidgetDetail';

export const appRoutes = [
  { path: routes.home, element: withLayout(Home) },
  { path: routes.widgetDetail, element: withLayout(WidgetDetail) },
  { path: routes.missing, element: withLayout(Home) },
];
`,
	"src/pages/Home.tsx": `export default function Home() {
  return null;
}
`,
	"src/pages/WidgetDetail.tsx": `import React from 'react';
import { getWidget } from '../services/WidgetService';
import HistoryPanel from '../components/HistoryPanel';

export default function WidgetDetail() {
  const w = getWidget('1');
  return <HistoryPanel />;
}
`,
	"src/components/HistoryPanel.tsx": `import * as svc from '../services/WidgetService';

export default function HistoryPanel() {
  svc.getHistory('1', 2);
  fetch('/api/legacy/export?format=csv');
  return null;
}
`,
	"src/services/WidgetService.ts": `import { secureGet, securePost } from '../lib/http';

const apiUrls = {
  widgets: '/v1/widgets',
  stats: '/v1/widgets/stats?range=30d',
};

export const getWidget = async (id: string): Promise<Widget> => {
  const url = apiUrls.widgets + '/' + id;
  return secureGet(url);
};

export async function createWidget(body: NewWidget) {
  return securePost(apiUrls.widgets, body);
}

export const getStats = async () => {
  return secureGet(apiUrls.stats);
};

export const getHistory = async (id: string, page: number) => {
  return secureGet(` + "`${apiUrls.widgets}/${id}/history?page=${page}`" + `);
};

export const helper = async () => {
  return 42;
};
`,
	"src/types/widget.ts": `export interface Widget {
  id: string;
  name?: string;
  tags: string[];
  owner: {
    id: string;
  };
  // audit
  createdAt: Date;
}

export type NewWidget = { name: string; tags: string[] };
`,
}

func TestExtract(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "web")
	writeFiles(t, repo, webApp)

	r := Extract(repo, ws, Options{})

	wantRoutes := []Route{
		{Path: "/", RouteKey: "home", ComponentName: "Home", SourcePath: "web/src/pages/Home.tsx"},
		{Path: "/widgets/:id", RouteKey: "widgetDetail", ComponentName: "WidgetDetail", SourcePath: "web/src/pages/WidgetDetail.tsx"},
	}
	if !reflect.DeepEqual(r.Routes, wantRoutes) {
		t.Errorf("routes = %+v, want %+v", r.Routes, wantRoutes)
	}

	wantEndpoints := []Endpoint{
		{ServiceName: "WidgetService", MethodName: "getWidget", HTTPMethod: "GET", PathPattern: "/v1/widgets/:id", SourcePath: "web/src/services/WidgetService.ts", ParamNames: []string{"id"}},
		{ServiceName: "WidgetService", MethodName: "createWidget", HTTPMethod: "POST", PathPattern: "/v1/widgets", SourcePath: "web/src/services/WidgetService.ts", ParamNames: []string{"body"}},
		{ServiceName: "WidgetService", MethodName: "getStats", HTTPMethod: "GET", PathPattern: "/v1/widgets/stats", SourcePath: "web/src/services/WidgetService.ts"},
		{ServiceName: "WidgetService", MethodName: "getHistory", HTTPMethod: "GET", PathPattern: "/v1/widgets/:id/history", SourcePath: "web/src/services/WidgetService.ts", ParamNames: []string{"id", "page"}},
	}
	if !reflect.DeepEqual(r.Endpoints, wantEndpoints) {
		t.Errorf("endpoints = %+v\nwant %+v", r.Endpoints, wantEndpoints)
	}

	var detail RouteEndpoints
	for _, re := range r.RouteEndpoints {
		if re.RouteKey == "widgetDetail" {
			detail = re
		}
	}
	var methods []string
	for _, ep := range detail.Endpoints {
		methods = append(methods, ep.MethodName)
	}
	if want := []string{"getHistory", "getWidget"}; !reflect.DeepEqual(methods, want) {
		t.Errorf("widgetDetail endpoints = %v, want %v", methods, want)
	}
	if len(r.RouteEndpoints) != 2 || len(r.RouteEndpoints[0].Endpoints) != 0 {
		t.Errorf("home route should have no endpoints: %+v", r.RouteEndpoints)
	}
}

func TestUsages(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "web")
	writeFiles(t, repo, webApp)

	r := Extract(repo, ws, Options{})
	find := func(src, svc, frag string) *Usage {
		for i, u := range r.Usages {
			if u.SourcePath == src && u.ServiceName == svc && u.PathFragment == frag {
				return &r.Usages[i]
			}
		}
		return nil
	}

	u := find("web/src/pages/WidgetDetail.tsx", "WidgetService", "")
	if u == nil || !reflect.DeepEqual(u.InvokedMethods, []string{"getWidget"}) {
		t.Errorf("WidgetDetail usage = %+v", u)
	}
	u = find("web/src/components/HistoryPanel.tsx", "", "export")
	if u == nil || u.URLLiteral != "/api/legacy/export" {
		t.Errorf("HistoryPanel literal usage = %+v", u)
	}
	if find("web/src/routes/routePaths.ts", "", "") != nil {
		t.Error("route paths module should not count as a usage")
	}
}

func TestSchemas(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "web")
	writeFiles(t, repo, webApp)

	r := Extract(repo, ws, Options{})
	if len(r.Schemas) != 2 {
		t.Fatalf("got %d schemas, want 2: %+v", len(r.Schemas), r.Schemas)
	}
	w := r.Schemas[0]
	if w.TypeName != "Widget" || w.Line != 1 || w.SourcePath != "web/src/types/widget.ts" {
		t.Errorf("schema = %+v", w)
	}
	wantProps := []Property{
		{Name: "id", Type: "string"},
		{Name: "name", Type: "string"},
		{Name: "tags", Type: "string"},
		{Name: "owner", Type: "object"},
		{Name: "createdAt", Type: "Date"},
	}
	if !reflect.DeepEqual(w.Properties, wantProps) {
		t.Errorf("properties = %+v, want %+v", w.Properties, wantProps)
	}
	n := r.Schemas[1]
	if n.TypeName != "NewWidget" || len(n.Properties) != 2 {
		t.Errorf("type alias schema = %+v", n)
	}
}

func TestExtractRootFront(t *testing.T) {
	ws := t.TempDir()
	writeFiles(t, ws, webApp)

	r := Extract(ws, ws, Options{})
	if len(r.Routes) == 0 || r.Routes[0].SourcePath != "src/pages/Home.tsx" {
		t.Errorf("root routes = %+v", r.Routes)
	}
}

func TestExtractEmptyRepo(t *testing.T) {
	ws := t.TempDir()
	r := Extract(filepath.Join(ws, "web"), ws, Options{})
	if r.Routes != nil || r.Endpoints != nil || r.Usages != nil || r.Schemas != nil {
		t.Errorf("empty repo produced %+v", r)
	}
}

func TestURLExpressionToPattern(t *testing.T) {
	urls := map[string]string{"items": "/v1/items", "search": "/v1/items/search?q="}
	tests := []struct {
		expr string
		want string
	}{
		{"apiUrls.items", "/v1/items"},
		{"apiUrls.search", "/v1/items/search"},
		{"apiUrls.items + '/' + itemId", "/v1/items/:itemId"},
		{"apiUrls.items + '/' + params.itemId + '/notes'", "/v1/items/:itemId/notes"},
		{"'/v1/private/' + v1 + '/x'", "/v1/private/v1/x"},
		{"`${apiUrls.items}/${id}?expand=${expand}`", "/v1/items/:id"},
		{"baseUrl", "/:baseUrl"},
		{"undefined", "/"},
	}
	for _, tt := range tests {
		if got := urlExpressionToPattern(tt.expr, urls); got != tt.want {
			t.Errorf("urlExpressionToPattern(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
