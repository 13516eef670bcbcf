// Package vectordb keeps a semantic index of embedded facts.
package vectordb

import "context"

// VectorStore stores fact documents and searches them by embedding.
type VectorStore interface {
	// AddDocuments adds or replaces documents.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns the documents closest to the query text.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// DeleteBySource removes every document of one repo.
	DeleteBySource(ctx context.Context, source string) error

	// Reset drops every document.
	Reset() error

	// Persist saves the index under dir.
	Persist(ctx context.Context, dir string) error

	// Load restores the index from dir.
	Load(ctx context.Context, dir string) error

	// Count returns the number of documents.
	Count() int
}
