package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cortex/internal/cache"
	"github.com/ziadkadry99/cortex/internal/logging"
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
	"svc-a/docs/adr/ADR-001-idempotency.md": "# Use idempotency keys\n\nAll POST endpoints accept an Idempotency-Key header.\n",
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

func newTestServer(t *testing.T) *Server {
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
	return NewServer(r, nil, logging.Discard())
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is %T, want text", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
		required []string
	}{
		{refreshTool, "cortex_refresh", nil},
		{searchTool, "cortex_search", []string{"query"}},
		{lookupTool, "cortex_lookup", []string{"identifier"}},
		{repoTool, "cortex_repo", []string{"repo"}},
		{contractsTool, "cortex_contracts", nil},
		{dependenciesTool, "cortex_dependencies", nil},
		{mappingsTool, "cortex_mappings", nil},
		{whoCallsTool, "cortex_who_calls", []string{"path"}},
		{decisionsTool, "cortex_decisions", nil},
		{glossaryTool, "cortex_glossary", nil},
		{tablesTool, "cortex_tables", nil},
		{changelogTool, "cortex_changelog", nil},
		{envTool, "cortex_env", []string{"repo"}},
		{serviceGraphTool, "cortex_service_graph", nil},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
			if len(tt.tool.InputSchema.Required) != len(tt.required) {
				t.Errorf("required = %v, want %v", tt.tool.InputSchema.Required, tt.required)
			}
		})
	}
}

func TestBeforeRefresh(t *testing.T) {
	srv := newTestServer(t)

	text, isErr := call(t, srv.handleContracts, map[string]any{})
	if isErr {
		t.Fatal("unexpected tool error")
	}
	if !strings.Contains(text, "cortex_refresh") {
		t.Errorf("expected a refresh hint, got %q", text)
	}
}

func TestRefreshAndQuery(t *testing.T) {
	srv := newTestServer(t)

	text, isErr := call(t, srv.handleRefresh, map[string]any{"force_full": true})
	if isErr || !strings.Contains(text, "Indexed 2 repo(s)") {
		t.Fatalf("refresh: %q", text)
	}

	t.Run("contracts", func(t *testing.T) {
		text, _ := call(t, srv.handleContracts, map[string]any{"service": "svc-a"})
		if !strings.Contains(text, "Found 1 fact(s)") || !strings.Contains(text, "Kind: contract") {
			t.Errorf("contracts = %q", text)
		}
	})

	t.Run("mappings", func(t *testing.T) {
		text, _ := call(t, srv.handleMappings, map[string]any{"to": "svc-a"})
		if !strings.Contains(text, "### svc-b -> svc-a") || !strings.Contains(text, "- GET /v1/widgets/123") {
			t.Errorf("mappings = %q", text)
		}
	})

	t.Run("who calls", func(t *testing.T) {
		text, _ := call(t, srv.handleWhoCalls, map[string]any{"path": "/v1/widgets"})
		if !strings.Contains(text, "svc-b -> svc-a: GET /v1/widgets/123") {
			t.Errorf("who calls = %q", text)
		}
		text, _ = call(t, srv.handleWhoCalls, map[string]any{"path": "/nothing"})
		if !strings.HasPrefix(text, "No callers") {
			t.Errorf("who calls nothing = %q", text)
		}
	})

	t.Run("repo", func(t *testing.T) {
		text, isErr := call(t, srv.handleRepo, map[string]any{"repo": "svc-a"})
		if isErr || !strings.Contains(text, "Endpoints: 1") || !strings.Contains(text, "Called by: 1 repo(s)") {
			t.Errorf("repo = %q", text)
		}
		if _, isErr := call(t, srv.handleRepo, map[string]any{"repo": "nope"}); !isErr {
			t.Error("expected error for unknown repo")
		}
	})

	t.Run("decisions", func(t *testing.T) {
		text, _ := call(t, srv.handleDecisions, map[string]any{"topic": "idempotency"})
		if !strings.Contains(text, "Use idempotency keys") {
			t.Errorf("decisions = %q", text)
		}
	})

	t.Run("search", func(t *testing.T) {
		text, isErr := call(t, srv.handleSearch, map[string]any{"query": "widgets", "limit": 2})
		if isErr || !strings.Contains(text, "--- Result 1") || strings.Contains(text, "--- Result 3") {
			t.Errorf("search = %q", text)
		}
	})

	t.Run("service graph", func(t *testing.T) {
		text, _ := call(t, srv.handleServiceGraph, map[string]any{})
		if !strings.Contains(text, "n_svc_b -->|1 call| n_svc_a") {
			t.Errorf("graph = %q", text)
		}
	})

	t.Run("env", func(t *testing.T) {
		text, _ := call(t, srv.handleEnv, map[string]any{"repo": "svc-b"})
		if !strings.Contains(text, "SVC_A_URL") {
			t.Errorf("env = %q", text)
		}
	})
}

func TestMissingParameters(t *testing.T) {
	srv := newTestServer(t)
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search":    srv.handleSearch,
		"lookup":    srv.handleLookup,
		"repo":      srv.handleRepo,
		"who_calls": srv.handleWhoCalls,
		"env":       srv.handleEnv,
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			if _, isErr := call(t, h, map[string]any{}); !isErr {
				t.Error("expected error for missing parameter")
			}
		})
	}
}

func TestSemanticSearchDisabled(t *testing.T) {
	srv := newTestServer(t)
	if _, isErr := call(t, srv.handleSearch, map[string]any{"query": "x", "semantic": true}); !isErr {
		t.Error("expected error when semantic search is disabled")
	}
}
