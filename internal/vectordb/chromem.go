package vectordb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/cortex/internal/embeddings"
	"github.com/ziadkadry99/cortex/internal/facts"
)

const (
	collectionName = "facts"
	exportFile     = "chromem.gob.gz"
)

// ChromemStore implements VectorStore with an in-memory chromem-go
// collection.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore returns an empty store whose queries are embedded with
// embedder.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	s := &ChromemStore{db: chromem.NewDB(), embedFunc: embeddings.ToChromemFunc(embedder)}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ChromemStore) Reset() error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(collectionName, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata:  metadataToMap(doc.Metadata),
		}
	}
	return s.collection.AddDocuments(ctx, chromDocs, runtime.NumCPU())
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	limit = min(limit, count)

	results, err := s.collection.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	return s.collection.Delete(ctx, map[string]string{"source": source}, nil)
}

func (s *ChromemStore) Persist(_ context.Context, dir string) error {
	return s.db.ExportToFile(filepath.Join(dir, exportFile), true, "")
}

func (s *ChromemStore) Load(_ context.Context, dir string) error {
	if err := s.db.ImportFromFile(filepath.Join(dir, exportFile), ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}
	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// Rebuild replaces the index with the given facts. Facts without an
// embedding are embedded through the store's embedding function.
func (s *ChromemStore) Rebuild(ctx context.Context, entries []facts.Entry) error {
	if err := s.Reset(); err != nil {
		return err
	}
	return s.AddDocuments(ctx, DocumentsFromEntries(entries, embeddings.Text))
}

func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"fact_id":     m.FactID,
		"kind":        string(m.Kind),
		"source":      m.Source,
		"source_path": m.SourcePath,
		"title":       m.Title,
	}
}

func mapToMetadata(m map[string]string) DocumentMetadata {
	return DocumentMetadata{
		FactID:     m["fact_id"],
		Kind:       facts.Kind(m["kind"]),
		Source:     m["source"],
		SourcePath: m["source_path"],
		Title:      m["title"],
	}
}

func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}
	where := make(map[string]string)
	if filter.Kind != nil {
		where["kind"] = string(*filter.Kind)
	}
	if filter.Source != nil {
		where["source"] = *filter.Source
	}
	if len(where) == 0 {
		return nil
	}
	return where
}
