package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every fact in the workspace",
	Long:  `Ranks contracts, mappings, docs, ADRs, glossary terms, tables and other facts against a free-text query.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default search_limit)")
	searchCmd.Flags().Bool("semantic", false, "rank by embedding similarity")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

type searchResultJSON struct {
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Repo     string  `json:"repo"`
	FilePath string  `json:"file_path"`
	Line     int     `json:"line,omitempty"`
	Title    string  `json:"title"`
	Summary  string  `json:"summary"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	semantic, _ := cmd.Flags().GetBool("semantic")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	e, err := loadEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}

	st := e.refresher.Store()
	var hits []store.Hit
	if semantic {
		if e.semantic == nil {
			return errors.New("semantic search needs embeddings.enabled in the config")
		}
		results, err := e.semantic.Search(ctx, args[0], limit, nil)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		for _, r := range results {
			if entry, ok := st.At(r.Position(), r.Document.Metadata.FactID); ok {
				hits = append(hits, store.Hit{Entry: entry, Score: float64(r.Similarity)})
			}
		}
	} else {
		hits = st.Search(args[0], limit)
	}

	if jsonOutput {
		out := searchResults(hits)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results:\n\n", len(hits))
	for i, h := range hits {
		f := h.Entry
		location := f.SourcePath
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", location, f.Line)
		}
		fmt.Printf("  %d. [%.2f] %s (%s)\n", i+1, h.Score, f.Title, f.Kind)
		fmt.Printf("     %s/%s\n", f.Source, location)
		fmt.Printf("     %s\n\n", truncate(f.Content, 120))
	}
	return nil
}

func searchResults(hits []store.Hit) []searchResultJSON {
	out := make([]searchResultJSON, 0, len(hits))
	for i, h := range hits {
		out = append(out, searchResultJSON{
			Rank:     i + 1,
			Score:    h.Score,
			ID:       h.Entry.ID,
			Kind:     string(h.Entry.Kind),
			Repo:     h.Entry.Source,
			FilePath: h.Entry.SourcePath,
			Line:     h.Entry.Line,
			Title:    h.Entry.Title,
			Summary:  truncate(h.Entry.Content, 200),
		})
	}
	return out
}
