package cmd

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/store"
)

func TestSearchResults(t *testing.T) {
	long := strings.Repeat("x", 250)
	tests := []struct {
		name string
		hits []store.Hit
		want []searchResultJSON
	}{
		{
			name: "empty",
			hits: nil,
			want: []searchResultJSON{},
		},
		{
			name: "entry fields",
			hits: []store.Hit{
				{Entry: facts.Entry{
					ID:         "svc-a:contract:GET /v1/widgets",
					Kind:       facts.KindContract,
					Source:     "svc-a",
					SourcePath: "svc-a/src/widgets.controller.ts",
					Line:       12,
					Title:      "GET /v1/widgets",
					Content:    "Lists widgets.",
				}, Score: 0.9},
				{Entry: facts.Entry{ID: "b", Kind: facts.KindDoc, Source: "svc-b", Content: long}, Score: 0.5},
			},
			want: []searchResultJSON{
				{
					Rank:     1,
					Score:    0.9,
					ID:       "svc-a:contract:GET /v1/widgets",
					Kind:     "contract",
					Repo:     "svc-a",
					FilePath: "svc-a/src/widgets.controller.ts",
					Line:     12,
					Title:    "GET /v1/widgets",
					Summary:  "Lists widgets.",
				},
				{Rank: 2, Score: 0.5, ID: "b", Kind: "doc", Repo: "svc-b", Summary: strings.Repeat("x", 200) + "..."},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchResults(tt.hits)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("searchResults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
