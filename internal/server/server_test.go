package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/cortex/internal/cache"
	"github.com/ziadkadry99/cortex/internal/logging"
	"github.com/ziadkadry99/cortex/internal/store"
)

const nestPackage = `{"name": "svc", "dependencies": {"@nestjs/core": "^10.0.0"}}`

var workspace = map[string]string{
	"svc-a/package.json": nestPackage,
	"svc-a/src/controllers/widgets.controller.ts": `@Controller('/v1/widgets')
export class WidgetsController {
  @Get(':id')
  findOne(@Param('id') id: string) {}
}
`,
	"svc-b/package.json": nestPackage,
	"svc-b/src/clients/widgets.client.ts": `export class WidgetsClient {
  private readonly axiosInstance = createAxiosInstance({
    baseURL: this.configService.get('SVC_A_URL'),
  });

  getWidget() {
    return this.axiosInstance.get('/v1/widgets/123');
  }
}
`,
}

func newTestServer(t *testing.T, refresh bool) *Server {
	t.Helper()
	ws := t.TempDir()
	for rel, content := range workspace {
		p := filepath.Join(ws, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	r := cache.NewRefresher(cache.Options{
		WorkspaceRoot: ws,
		CacheDir:      filepath.Join(t.TempDir(), "cache"),
		Logger:        logging.Discard(),
	})
	if refresh {
		if _, err := r.Refresh(context.Background(), false); err != nil {
			t.Fatal(err)
		}
	}
	return New(Config{}, r, nil, logging.Discard())
}

func get(t *testing.T, srv *Server, target string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal %s: %v", target, err)
		}
	}
	return w.Code
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, false)

	var body struct {
		Status string `json:"status"`
		Facts  int    `json:"facts"`
	}
	if code := get(t, srv, "/healthz", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Status != "ok" || body.Facts != 0 {
		t.Errorf("body = %+v", body)
	}
}

func TestCORSHeaders(t *testing.T) {
	r := cache.NewRefresher(cache.Options{WorkspaceRoot: t.TempDir(), Logger: logging.Discard()})
	srv := New(Config{AllowAll: true}, r, nil, logging.Discard())

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestRefreshEndpoint(t *testing.T) {
	srv := newTestServer(t, false)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("POST", "/api/refresh?force=true", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var sum cache.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Repos != 2 || sum.Entries == 0 || !sum.Forced || sum.CacheHit {
		t.Errorf("summary = %+v", sum)
	}
	if srv.refresher.Store().Len() != sum.Entries {
		t.Errorf("store has %d facts, summary says %d", srv.refresher.Store().Len(), sum.Entries)
	}
}

func TestQueryEndpoints(t *testing.T) {
	srv := newTestServer(t, true)

	var contracts []entryView
	if code := get(t, srv, "/api/contracts?service=svc-a&path=widgets", &contracts); code != http.StatusOK {
		t.Fatalf("contracts: %d", code)
	}
	if len(contracts) != 1 || contracts[0].ID != "svc-a:contract:GET::v1:widgets::id" {
		t.Fatalf("contracts = %+v", contracts)
	}

	var mappings []entryView
	get(t, srv, "/api/mappings?from=svc-b&to=svc-a", &mappings)
	if len(mappings) != 1 {
		t.Errorf("mappings = %+v", mappings)
	}

	var callers []store.Caller
	get(t, srv, "/api/callers?path=/v1/widgets", &callers)
	if len(callers) != 1 || callers[0].FromRepo != "svc-b" || callers[0].ToService != "svc-a" {
		t.Errorf("callers = %+v", callers)
	}

	var repos []entryView
	get(t, srv, "/api/repos", &repos)
	if len(repos) != 2 {
		t.Errorf("repos = %d, want 2", len(repos))
	}

	var repo repoView
	if code := get(t, srv, "/api/repos/svc-a", &repo); code != http.StatusOK {
		t.Fatalf("repo: %d", code)
	}
	if repo.Summary.Source != "svc-a" || len(repo.Contracts) != 1 || repo.Callers != 1 {
		t.Errorf("repo = %+v", repo)
	}
	if code := get(t, srv, "/api/repos/nope", nil); code != http.StatusNotFound {
		t.Errorf("unknown repo: %d", code)
	}

	var facts []entryView
	get(t, srv, "/api/facts?kind=contract", &facts)
	if len(facts) != 1 {
		t.Errorf("facts?kind=contract = %d", len(facts))
	}
}

func TestGraphEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	var g struct {
		Nodes []struct{ ID string }
		Edges []struct {
			From, To string
			Calls    int
		}
	}
	if code := get(t, srv, "/api/graph", &g); code != http.StatusOK {
		t.Fatalf("graph: %d", code)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 || g.Edges[0].From != "svc-b" || g.Edges[0].Calls != 1 {
		t.Errorf("graph = %+v", g)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/graph?format=mermaid", nil))
	if !strings.HasPrefix(w.Body.String(), "graph LR\n") {
		t.Errorf("mermaid = %q", w.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	var hits []hitView
	if code := get(t, srv, "/api/search?q=widgets&limit=3", &hits); code != http.StatusOK {
		t.Fatalf("search: %d", code)
	}
	if len(hits) == 0 || len(hits) > 3 {
		t.Fatalf("hits = %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not sorted: %v > %v", hits[i].Score, hits[i-1].Score)
		}
	}

	if code := get(t, srv, "/api/search", nil); code != http.StatusBadRequest {
		t.Errorf("missing q: %d", code)
	}
	if code := get(t, srv, "/api/search?q=widgets&semantic=true", nil); code != http.StatusBadRequest {
		t.Errorf("semantic without index: %d", code)
	}
}

func TestRefreshSocket(t *testing.T) {
	srv := newTestServer(t, false)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/refresh"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	if err := conn.WriteJSON(refreshRequest{Type: "refresh", ForceFull: true}); err != nil {
		t.Fatal(err)
	}

	var progress []string
	for {
		var ev refreshEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type == "progress" {
			progress = append(progress, ev.Repo)
			continue
		}
		if ev.Type != "done" || ev.Summary == nil {
			t.Fatalf("unexpected event %+v", ev)
		}
		if ev.Summary.Repos != 2 {
			t.Errorf("summary = %+v", ev.Summary)
		}
		break
	}
	if len(progress) != 2 || progress[0] != "svc-a" || progress[1] != "svc-b" {
		t.Errorf("progress = %v", progress)
	}

	if err := conn.WriteJSON(refreshRequest{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	var ev refreshEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != "error" {
		t.Errorf("event = %+v", ev)
	}
}
