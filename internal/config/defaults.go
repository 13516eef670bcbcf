package config

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = ".cortex.yml"

// defaultEmbeddingModels maps each embedding provider to its default model.
var defaultEmbeddingModels = map[EmbeddingProvider]string{
	EmbeddingOpenAI: "text-embedding-3-small",
	EmbeddingOllama: "nomic-embed-text",
}

// DefaultEmbeddingModel returns the model used when none is configured.
func DefaultEmbeddingModel(p EmbeddingProvider) string {
	return defaultEmbeddingModels[p]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkspaceRoot: ".",
		CacheDir:      ".cortex-cache",
		MaxFileBytes:  500 * 1024,
		SQLRepoName:   "moor-sql",
		SearchLimit:   20,
		Embeddings: EmbeddingConfig{
			Enabled:  false,
			Provider: EmbeddingOpenAI,
			Model:    defaultEmbeddingModels[EmbeddingOpenAI],
		},
		Server: ServerConfig{
			Port: 8090,
		},
	}
}
