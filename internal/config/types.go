package config

// EmbeddingProvider identifies the backend used to compute fact embeddings.
type EmbeddingProvider string

const (
	EmbeddingOpenAI EmbeddingProvider = "openai"
	EmbeddingOllama EmbeddingProvider = "ollama"
)

// Config is the top-level cortex configuration, corresponding to .cortex.yml.
type Config struct {
	WorkspaceRoot string          `yaml:"workspace_root" koanf:"workspace_root"`
	CacheDir      string          `yaml:"cache_dir" koanf:"cache_dir"`
	MaxFileBytes  int64           `yaml:"max_file_bytes" koanf:"max_file_bytes"`
	Exclude       []string        `yaml:"exclude" koanf:"exclude"`
	SQLRepoName   string          `yaml:"sql_repo_name" koanf:"sql_repo_name"`
	SearchLimit   int             `yaml:"search_limit" koanf:"search_limit"`
	Embeddings    EmbeddingConfig `yaml:"embeddings" koanf:"embeddings"`
	Server        ServerConfig    `yaml:"server" koanf:"server"`
}

// EmbeddingConfig controls the optional semantic index.
type EmbeddingConfig struct {
	Enabled  bool              `yaml:"enabled" koanf:"enabled"`
	Provider EmbeddingProvider `yaml:"provider" koanf:"provider"`
	Model    string            `yaml:"model" koanf:"model"`
	BaseURL  string            `yaml:"base_url" koanf:"base_url"`
}

// ServerConfig holds HTTP query API settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
