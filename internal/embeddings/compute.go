package embeddings

import (
	"context"
	"log/slog"

	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/textscan"
)

const (
	// BatchSize is the number of facts embedded per request.
	BatchSize = 8
	// MaxTextRunes caps the text embedded for one fact.
	MaxTextRunes = 2000
)

// Text returns the text embedded for a fact: its title and content.
func Text(e facts.Entry) string {
	return textscan.Truncate(e.Title+"\n"+e.Content, MaxTextRunes)
}

// ComputeForEntries fills in the embedding of every fact that has a title
// or content and no embedding yet, BatchSize facts per request. A failed
// batch leaves its facts without embeddings. It returns the number of facts
// embedded and stops early only when ctx is done.
func ComputeForEntries(ctx context.Context, emb Embedder, entries []facts.Entry, logger *slog.Logger) (int, error) {
	if emb == nil {
		return 0, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	var pending []int
	for i, e := range entries {
		if len(e.Embedding) == 0 && (e.Title != "" || e.Content != "") {
			pending = append(pending, i)
		}
	}

	done := 0
	for start := 0; start < len(pending); start += BatchSize {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		end := min(start+BatchSize, len(pending))
		batch := pending[start:end]
		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = Text(entries[idx])
		}
		vecs, err := emb.Embed(ctx, texts)
		if err != nil || len(vecs) != len(batch) {
			logger.Debug("embeddings: batch skipped", "model", emb.Name(), "size", len(batch), "error", err)
			continue
		}
		for j, idx := range batch {
			if len(vecs[j]) > 0 {
				entries[idx].Embedding = vecs[j]
				done++
			}
		}
	}
	return done, nil
}
