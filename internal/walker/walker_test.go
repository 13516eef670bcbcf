package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files (relative path -> content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relPaths(files []FileInfo) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestWalk_LexicalDepthFirst(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.go":        "package b",
		"a/z.go":      "package a",
		"a/b/c.go":    "package b",
		"README.md":   "# readme",
		"cmd/main.go": "package main",
	})

	files, err := Walk(WalkerConfig{RootDir: root, Languages: []string{LangGo}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	got := strings.Join(relPaths(files), ",")
	want := "a/b/c.go,a/z.go,b.go,cmd/main.go"
	if got != want {
		t.Errorf("Walk() order = %s, want %s", got, want)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	files, err := Walk(WalkerConfig{RootDir: filepath.Join(t.TempDir(), "nope")})
	if err != nil {
		t.Fatalf("Walk() on missing root should not fail: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", relPaths(files))
	}
}

func TestWalk_DefaultExcludeDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.ts":               "x",
		"node_modules/pkg/i.ts":    "x",
		"dist/app.js":              "x",
		".hidden/secret.ts":        "x",
		"src/.generated/client.ts": "x",
	})
	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "src/app.ts" {
		t.Errorf("Walk() = %v, want [src/app.ts]", got)
	}
}

func TestWalk_ExcludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/keep.ts":        "x",
		"src/legacy/old.ts":  "x",
		"src/generated.ts":   "x",
	})
	files, err := Walk(WalkerConfig{RootDir: root, Exclude: []string{"legacy", "generated.*"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "src/keep.ts" {
		t.Errorf("Walk() = %v, want [src/keep.ts]", got)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":       "tmp/\n*.gen.ts\n",
		"src/a.ts":         "x",
		"src/b.gen.ts":     "x",
		"tmp/scratch.ts":   "x",
	})
	files, err := Walk(WalkerConfig{RootDir: root, Languages: []string{LangTypeScript}})
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "src/a.ts" {
		t.Errorf("Walk() = %v, want [src/a.ts]", got)
	}
}

func TestWalk_SkipsLargeAndBinaryFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.ts": "const x = 1",
		"big.ts":   strings.Repeat("a", 2048),
		"bin.ts":   "ab\x00cd",
	})
	files, err := Walk(WalkerConfig{RootDir: root, MaxFileSize: 1024})
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "small.ts" {
		t.Errorf("Walk() = %v, want [small.ts]", got)
	}
}

func TestWalk_MatchAndSkipTests(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/widgets.controller.ts":      "x",
		"src/widgets.controller.spec.ts": "x",
		"src/widgets.service.ts":         "x",
	})
	files, err := Walk(WalkerConfig{
		RootDir:   root,
		SkipTests: true,
		Match:     func(rel string) bool { return strings.Contains(rel, ".controller.") },
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "src/widgets.controller.ts" {
		t.Errorf("Walk() = %v", got)
	}
}

func TestReadFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "hello", "b.txt": strings.Repeat("x", 100)})
	got, err := ReadFile(filepath.Join(root, "a.txt"), 10)
	if err != nil || got != "hello" {
		t.Errorf("ReadFile() = %q, %v", got, err)
	}
	if _, err := ReadFile(filepath.Join(root, "b.txt"), 10); err == nil {
		t.Error("expected error for file over the size cap")
	}
	if _, err := ReadFile(filepath.Join(root, "missing.txt"), 10); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"main.go", LangGo},
		{"app.controller.ts", LangTypeScript},
		{"Page.tsx", LangTypeScript},
		{"index.js", LangJavaScript},
		{"Widget.kt", LangKotlin},
		{"Widget.java", LangJava},
		{"001_init.sql", LangSQL},
		{"types.d.ts", LangUnknown},
		{"Makefile", LangUnknown},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.name); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		name, rel string
		want      bool
	}{
		{"handler_test.go", "internal/handler_test.go", true},
		{"a.spec.ts", "src/a.spec.ts", true},
		{"WidgetControllerTest.kt", "src/test/kotlin/WidgetControllerTest.kt", true},
		{"a.ts", "src/__tests__/a.ts", true},
		{"a.ts", "src/a.ts", false},
	}
	for _, tt := range tests {
		if got := isTestFile(tt.name, tt.rel); got != tt.want {
			t.Errorf("isTestFile(%q, %q) = %v, want %v", tt.name, tt.rel, got, tt.want)
		}
	}
}

func TestShouldExcludeDir(t *testing.T) {
	for _, name := range []string{".git", ".cortex-cache", "node_modules", "Vendor"} {
		if !ShouldExcludeDir(name) {
			t.Errorf("ShouldExcludeDir(%q) = false, want true", name)
		}
	}
	if ShouldExcludeDir("src") {
		t.Error("ShouldExcludeDir(src) = true, want false")
	}
}
