package routes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/cortex/internal/discovery"
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

func routeKeys(routes []discovery.RouteInfo) []string {
	var out []string
	for _, r := range routes {
		out = append(out, r.Method+" "+r.FullPath)
	}
	return out
}

func findRoute(t *testing.T, routes []discovery.RouteInfo, method, path string) discovery.RouteInfo {
	t.Helper()
	for _, r := range routes {
		if r.Method == method && r.FullPath == path {
			return r
		}
	}
	t.Fatalf("route %s %s not found in %v", method, path, routeKeys(routes))
	return discovery.RouteInfo{}
}

func extract(t *testing.T, v discovery.Variant, ws, repoDir, controllerPath string) []discovery.RouteInfo {
	t.Helper()
	repo := discovery.Repo{ID: filepath.Base(repoDir), Variant: v, Path: repoDir, ControllerPath: controllerPath}
	return Registry(Options{})[v].ExtractRoutes(repo, ws)
}

const widgetsController = `import { Controller, Get, Post, Body, Param } from '@nestjs/common';

@Controller('/v1/widgets')
export class WidgetsController {
  constructor(private readonly svc: WidgetsService) {}

  @Get(':id')
  async findOne(@Param('id') id: string): Promise<WidgetDto> {
    return this.svc.find(id);
  }

  @Post()
  @HttpCode(201)
  create(@Body() dto: CreateWidgetDto): Promise<Page<WidgetDto>> {
    return this.svc.create(dto);
  }

  @Delete(':id')
  remove(@Param('id') id: string) {}
}
`

func TestNestExtractor(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "svc-a")
	writeFiles(t, repo, map[string]string{
		"src/controllers/widgets.controller.ts":      widgetsController,
		"src/controllers/widgets.controller.spec.ts": widgetsController,
		"src/controllers/widgets.service.ts":         "@Get('/nope')",
		"src/other/health.controller.ts":             "@Controller('health')\n@Get('/')",
	})

	routes := extract(t, discovery.VariantNest, ws, repo, discovery.NestControllerPath)
	if len(routes) != 3 {
		t.Fatalf("got routes %v, want 3", routeKeys(routes))
	}

	get := findRoute(t, routes, "GET", "/v1/widgets/:id")
	if get.FilePath != "svc-a/src/controllers/widgets.controller.ts" {
		t.Errorf("FilePath = %q", get.FilePath)
	}
	if get.Line != 7 {
		t.Errorf("Line = %d, want 7", get.Line)
	}
	if get.HandlerName != "findOne" || get.ResponseType != "WidgetDto" || get.RequestType != "" {
		t.Errorf("GET signature = %+v", get)
	}

	post := findRoute(t, routes, "POST", "/v1/widgets")
	if post.HandlerName != "create" || post.RequestType != "CreateWidgetDto" || post.ResponseType != "Page<WidgetDto>" {
		t.Errorf("POST signature = %+v", post)
	}

	del := findRoute(t, routes, "DELETE", "/v1/widgets/:id")
	if del.HandlerName != "remove" || del.ResponseType != "" {
		t.Errorf("DELETE signature = %+v", del)
	}
}

func TestNestExtractorMissingControllerDir(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "svc-a")
	writeFiles(t, repo, map[string]string{"src/app.controller.ts": widgetsController})
	if routes := extract(t, discovery.VariantNest, ws, repo, discovery.NestControllerPath); len(routes) != 0 {
		t.Errorf("expected no routes, got %v", routeKeys(routes))
	}
}

func TestNestControllerObjectForm(t *testing.T) {
	f := sourceFile{rel: "a.controller.ts", content: "@Controller({ path: 'orders', version: '1' })\nclass X {\n  @Get('recent')\n  recent() {}\n}"}
	routes := nestRoutes(f)
	if len(routes) != 1 || routes[0].FullPath != "/orders/recent" || routes[0].HandlerName != "recent" {
		t.Errorf("routes = %+v", routes)
	}
}

const kotlinController = `package com.acme.widgets

@RestController
@RequestMapping("/api/v1/widgets")
class WidgetController(private val service: WidgetService) {

    @GetMapping("/{id}")
    fun get(@PathVariable id: Long): ResponseEntity<WidgetDto> {
        return ResponseEntity.ok(service.get(id))
    }

    @PostMapping(value = ["/"], consumes = ["application/json"])
    suspend fun create(@RequestBody @Valid body: CreateWidgetRequest): WidgetDto = service.create(body)

    @GetMapping
    fun list(): List<WidgetDto> = service.list()
}
`

const javaController = `package com.acme.orders;

@Controller
@RequestMapping(value = "orders")
public class OrderController {

    @PutMapping(path = "/{id}")
    public ResponseEntity<OrderDto> update(@PathVariable Long id, @RequestBody final UpdateOrder body) {
        return null;
    }

    @RequestMapping(value = "/{id}", method = RequestMethod.DELETE)
    public void delete(@PathVariable Long id) {}
}
`

func TestSpringExtractor(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "svc-spring")
	writeFiles(t, repo, map[string]string{
		"src/main/kotlin/com/acme/WidgetController.kt": kotlinController,
		"src/main/java/com/acme/OrderController.java":  javaController,
		"src/main/kotlin/com/acme/WidgetService.kt":    `@GetMapping("/not-a-controller")`,
		"src/test/kotlin/WidgetControllerTest.kt":      kotlinController,
	})

	routes := extract(t, discovery.VariantSpring, ws, repo, discovery.SpringControllerPath)
	if len(routes) != 5 {
		t.Fatalf("got %v, want 5 routes", routeKeys(routes))
	}

	get := findRoute(t, routes, "GET", "/api/v1/widgets/{id}")
	if get.HandlerName != "get" || get.ResponseType != "WidgetDto" {
		t.Errorf("kotlin GET = %+v", get)
	}
	post := findRoute(t, routes, "POST", "/api/v1/widgets")
	if post.HandlerName != "create" || post.RequestType != "CreateWidgetRequest" || post.ResponseType != "WidgetDto" {
		t.Errorf("kotlin POST = %+v", post)
	}
	list := findRoute(t, routes, "GET", "/api/v1/widgets")
	if list.HandlerName != "list" || list.ResponseType != "List<WidgetDto>" {
		t.Errorf("kotlin list = %+v", list)
	}

	put := findRoute(t, routes, "PUT", "/orders/{id}")
	if put.HandlerName != "update" || put.RequestType != "UpdateOrder" || put.ResponseType != "OrderDto" {
		t.Errorf("java PUT = %+v", put)
	}
	findRoute(t, routes, "DELETE", "/orders/{id}")
}

func TestAnnotationPath(t *testing.T) {
	tests := []struct{ args, want string }{
		{`"/x"`, "/x"},
		{`value = ["/y"], produces = ["a/b"]`, "/y"},
		{`path = "/z"`, "/z"},
		{`produces = "application/json", value = "/w"`, "/w"},
		{``, ""},
	}
	for _, tt := range tests {
		if got := annotationPath(tt.args); got != tt.want {
			t.Errorf("annotationPath(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestUnwrapResponseEntity(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ResponseEntity<List<Foo>>", "List<Foo>"},
		{"WidgetDto?", "WidgetDto"},
		{"ResponseEntity", ""},
	}
	for _, tt := range tests {
		if got := unwrapResponseEntity(tt.in); got != tt.want {
			t.Errorf("unwrapResponseEntity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

const chiRouter = `package server

func routes(r chi.Router) {
	r.Get("/health", health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/orders", createOrder)
		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", getOrder)
		})
	})
	id := r.URL.Query().Get("id")
	h := req.Header.Get("Content-Type")
}
`

const ginRouter = `package main

func main() {
	r := gin.Default()
	v1 := r.Group("/api/v1")
	admin := v1.Group("/admin")
	v1.GET("/users", listUsers)
	admin.DELETE("/users/:id", deleteUser)
	r.GET("/health", health)
}
`

const muxRouter = `package api

func Register(r *mux.Router, mux *http.ServeMux) {
	r.HandleFunc("/items", list).Methods("GET", "POST")
	r.HandleFunc("/items/{id}", get)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/things", things).
		Methods("PUT")
	mux.HandleFunc("GET /v2/items/{id}", getItem)
	http.Handle("/metrics", promhttp.Handler())
}
`

func TestGoExtractor(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "svc-go")
	writeFiles(t, repo, map[string]string{
		"main.go":                   ginRouter,
		"internal/server/routes.go": chiRouter,
		"pkg/api/mux.go":            muxRouter,
		"pkg/api/mux_test.go":       `r.HandleFunc("/test-only", h)`,
		"server/router.go":          `r.Get("/v1/items", h)`,
		"vendor/x/y.go":             `r.Get("/vendored", h)`,
	})

	routes := extract(t, discovery.VariantGo, ws, repo, "")
	want := []string{
		"GET /api/v1/users",
		"DELETE /api/v1/admin/users/:id",
		"GET /health",
		"POST /v1/orders",
		"GET /v1/orders/{id}",
		"GET /items",
		"POST /items",
		"GET /items/{id}",
		"PUT /api/things",
		"GET /v2/items/{id}",
		"GET /metrics",
		"GET /v1/items",
	}
	got := map[string]bool{}
	for _, k := range routeKeys(routes) {
		if got[k] {
			t.Errorf("duplicate route %s", k)
		}
		got[k] = true
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing route %s (got %v)", w, routeKeys(routes))
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d routes %v, want %d", len(got), routeKeys(routes), len(want))
	}
	for _, r := range routes {
		if strings.Contains(r.FilePath, "_test.go") || r.Line == 0 {
			t.Errorf("unexpected route %+v", r)
		}
	}
}

func TestExpressExtractor(t *testing.T) {
	ws := t.TempDir()
	repo := filepath.Join(ws, "svc-express")
	writeFiles(t, repo, map[string]string{
		"src/app.ts": `import express from 'express';
import usersRouter from './routes/users';
const app = express();
const admin = express.Router();
app.use('/api', authenticate, usersRouter);
app.use('/admin', admin);
admin.get('/stats', stats);
app.get('/health', (req, res) => res.send('ok'));
axios.get('/not-a-route');
`,
		"src/routes/users.ts": `import { Router } from 'express';
const router = Router();
router.get('/users/:id', getUser);
router.post('/users', createUser);
export default router;
`,
	})

	routes := extract(t, discovery.VariantExpress, ws, repo, discovery.ExpressControllerPath)
	want := []string{"GET /admin/stats", "GET /health", "GET /api/users/:id", "POST /api/users"}
	keys := routeKeys(routes)
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("routes = %v, want %v", keys, want)
	}
	if routes[2].FilePath != "svc-express/src/routes/users.ts" || routes[2].Line != 3 {
		t.Errorf("users route = %+v", routes[2])
	}
}

func TestDedupe(t *testing.T) {
	in := []discovery.RouteInfo{
		{Method: "GET", FullPath: "/a", FilePath: "x"},
		{Method: "GET", FullPath: "/a", FilePath: "y"},
		{Method: "POST", FullPath: "/a"},
	}
	out := Dedupe(in)
	if len(out) != 2 || out[0].FilePath != "x" {
		t.Errorf("Dedupe = %+v", out)
	}
	if len(in) != 3 || in[1].FilePath != "y" {
		t.Error("Dedupe must not modify its input")
	}
}
