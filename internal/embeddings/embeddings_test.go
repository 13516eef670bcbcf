package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadkadry99/cortex/internal/config"
	"github.com/ziadkadry99/cortex/internal/facts"
)

type fakeEmbedder struct {
	calls  [][]string
	failOn int // 1-based call number that fails, 0 for none
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if len(f.calls) == f.failOn {
		return nil, errors.New("boom")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }
func (f *fakeEmbedder) Name() string    { return "fake" }

func makeEntries(n int) []facts.Entry {
	out := make([]facts.Entry, n)
	for i := range out {
		out[i] = facts.New(facts.KindDoc, "svc", "svc/doc.md", fmt.Sprintf("doc %d", i), "body", nil, nil, 0)
	}
	return out
}

func TestComputeForEntriesBatches(t *testing.T) {
	entries := makeEntries(19)
	entries[0].Embedding = []float32{9, 9}
	entries[1].Title, entries[1].Content = "", ""

	f := &fakeEmbedder{}
	n, err := ComputeForEntries(context.Background(), f, entries, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 17 {
		t.Errorf("embedded %d, want 17", n)
	}
	if len(f.calls) != 3 || len(f.calls[0]) != BatchSize || len(f.calls[2]) != 1 {
		t.Errorf("batches = %d, sizes %d/%d", len(f.calls), len(f.calls[0]), len(f.calls[len(f.calls)-1]))
	}
	if entries[0].Embedding[0] != 9 {
		t.Error("existing embedding was recomputed")
	}
	if entries[1].Embedding != nil {
		t.Error("entry without text was embedded")
	}
}

func TestComputeForEntriesSkipsFailedBatch(t *testing.T) {
	entries := makeEntries(10)
	f := &fakeEmbedder{failOn: 1}
	n, err := ComputeForEntries(context.Background(), f, entries, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("embedded %d, want 2", n)
	}
	if entries[0].Embedding != nil || entries[9].Embedding == nil {
		t.Error("failed batch should be skipped, later batch kept")
	}
}

func TestComputeForEntriesNilEmbedder(t *testing.T) {
	if n, err := ComputeForEntries(context.Background(), nil, makeEntries(3), nil); n != 0 || err != nil {
		t.Errorf("got %d, %v", n, err)
	}
}

func TestTextIsCapped(t *testing.T) {
	e := facts.New(facts.KindDoc, "svc", "x", "title", strings.Repeat("é", 5000), nil, nil, 0)
	if got := len([]rune(Text(e))); got > MaxTextRunes {
		t.Errorf("text has %d runes", got)
	}
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := ollamaEmbedResponse{}
		for range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{0.1, 0.2, 0.3})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 || e.Dimensions() != 3 {
		t.Errorf("got %d vectors, dims %d", len(vecs), e.Dimensions())
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("name = %q", e.Name())
	}
}

func TestNew(t *testing.T) {
	if e, err := New(config.EmbeddingConfig{}); e != nil || err != nil {
		t.Errorf("disabled config gave %v, %v", e, err)
	}
	e, err := New(config.EmbeddingConfig{Enabled: true, Provider: config.EmbeddingOllama})
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("name = %q", e.Name())
	}
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(config.EmbeddingConfig{Enabled: true, Provider: config.EmbeddingOpenAI}); err == nil {
		t.Error("expected an error without an API key")
	}
	if _, err := New(config.EmbeddingConfig{Enabled: true, Provider: "bogus"}); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}
