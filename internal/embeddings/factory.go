package embeddings

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/cortex/internal/config"
)

// New builds the embedder selected by cfg. It returns nil, nil when
// embeddings are disabled.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultEmbeddingModel(cfg.Provider)
	}
	switch cfg.Provider {
	case config.EmbeddingOpenAI, "":
		keyVar := config.APIKeyEnvVar(config.EmbeddingOpenAI)
		key := os.Getenv(keyVar)
		if key == "" {
			return nil, fmt.Errorf("embeddings: %s is not set", keyVar)
		}
		return NewOpenAIEmbedder(key, model, cfg.BaseURL), nil
	case config.EmbeddingOllama:
		return NewOllamaEmbedder(model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("embeddings: unknown provider %q", cfg.Provider)
	}
}
