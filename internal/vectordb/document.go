package vectordb

import (
	"strconv"

	"github.com/ziadkadry99/cortex/internal/facts"
)

// Document is one indexed fact.
type Document struct {
	ID        string // position of the fact in the store it was built from
	Content   string
	Embedding []float32 // optional; computed from Content when empty
	Metadata  DocumentMetadata
}

// DocumentMetadata identifies the fact a document came from.
type DocumentMetadata struct {
	FactID     string
	Kind       facts.Kind
	Source     string
	SourcePath string
	Title      string
}

// SearchResult pairs a document with its similarity to the query.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// Position returns the index of the fact in the store the document was
// built from, or -1.
func (r SearchResult) Position() int {
	n, err := strconv.Atoi(r.Document.ID)
	if err != nil {
		return -1
	}
	return n
}

// SearchFilter narrows a search by metadata.
type SearchFilter struct {
	Kind   *facts.Kind
	Source *string
}

// DocumentsFromEntries turns facts into documents. Document ids are the
// facts' positions, since fact ids are not unique.
func DocumentsFromEntries(entries []facts.Entry, text func(facts.Entry) string) []Document {
	docs := make([]Document, 0, len(entries))
	for i, e := range entries {
		docs = append(docs, Document{
			ID:        strconv.Itoa(i),
			Content:   text(e),
			Embedding: e.Embedding,
			Metadata: DocumentMetadata{
				FactID:     e.ID,
				Kind:       e.Kind,
				Source:     e.Source,
				SourcePath: e.SourcePath,
				Title:      e.Title,
			},
		})
	}
	return docs
}
