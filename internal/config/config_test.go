package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CacheDir != ".cortex-cache" {
		t.Errorf("expected default cache_dir %q, got %q", ".cortex-cache", cfg.CacheDir)
	}
	if cfg.MaxFileBytes != 500*1024 {
		t.Errorf("expected default max_file_bytes %d, got %d", 500*1024, cfg.MaxFileBytes)
	}
	if cfg.SQLRepoName != "moor-sql" {
		t.Errorf("expected default sql_repo_name %q, got %q", "moor-sql", cfg.SQLRepoName)
	}
	if cfg.Embeddings.Enabled {
		t.Error("embeddings should be disabled by default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cortex.yml")

	original := DefaultConfig()
	original.WorkspaceRoot = "/srv/workspace"
	original.Exclude = []string{"legacy-*", "tmp"}
	original.SearchLimit = 7
	original.Embeddings.Enabled = true
	original.Embeddings.Provider = EmbeddingOllama
	original.Server.Port = 9000

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.WorkspaceRoot != original.WorkspaceRoot {
		t.Errorf("workspace_root: got %q, want %q", loaded.WorkspaceRoot, original.WorkspaceRoot)
	}
	if loaded.SearchLimit != 7 {
		t.Errorf("search_limit: got %d, want 7", loaded.SearchLimit)
	}
	if !loaded.Embeddings.Enabled || loaded.Embeddings.Provider != EmbeddingOllama {
		t.Errorf("embeddings: got %+v", loaded.Embeddings)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("server.port: got %d, want 9000", loaded.Server.Port)
	}
	if len(loaded.Exclude) != 2 || loaded.Exclude[0] != "legacy-*" {
		t.Errorf("exclude: got %v", loaded.Exclude)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.SearchLimit != 20 {
		t.Errorf("expected default search_limit, got %d", cfg.SearchLimit)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("CORTEX_WORKSPACE_ROOT", "/tmp/ws")
	t.Setenv("CORTEX_EMBEDDINGS_PROVIDER", "ollama")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.WorkspaceRoot != "/tmp/ws" {
		t.Errorf("env override failed: got %q, want %q", loaded.WorkspaceRoot, "/tmp/ws")
	}
	if loaded.Embeddings.Provider != EmbeddingOllama {
		t.Errorf("nested env override failed: got %q", loaded.Embeddings.Provider)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CORTEX_CACHE_DIR", "cache_dir"},
		{"CORTEX_SERVER_ALLOW_ALL", "server.allow_all"},
		{"CORTEX_EMBEDDINGS_BASE_URL", "embeddings.base_url"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty root", func(c *Config) { c.WorkspaceRoot = "" }, true},
		{"negative size", func(c *Config) { c.MaxFileBytes = -1 }, true},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "cohere" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCachePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	if got := cfg.CachePath(); got != filepath.Join("/ws", ".cortex-cache") {
		t.Errorf("CachePath() = %q", got)
	}
	cfg.CacheDir = "/var/cache/cortex"
	if got := cfg.CachePath(); got != "/var/cache/cortex" {
		t.Errorf("CachePath() = %q", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" legacy-* ,, tmp ")
	if len(got) != 2 || got[0] != "legacy-*" || got[1] != "tmp" {
		t.Errorf("splitAndTrim = %q", got)
	}
	if got := splitAndTrim(""); len(got) != 0 {
		t.Errorf("splitAndTrim(\"\") = %q, want empty", got)
	}
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8090", 8090, false},
		{" 8080 ", 8080, false},
		{"65535", 65535, false},
		{"abc", 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"70000", 0, true},
		{"-1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePort(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePort(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePort(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
