// Package embeddings computes optional vector embeddings for facts. It is
// only used when embeddings are enabled in the configuration.
package embeddings

import "context"

// Embedder generates text embeddings.
type Embedder interface {
	// Embed returns one vector per text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size, or 0 when unknown until the
	// first call.
	Dimensions() int

	// Name identifies the model.
	Name() string
}
