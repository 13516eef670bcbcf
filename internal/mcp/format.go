package mcp

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/outbound"
	"github.com/ziadkadry99/cortex/internal/store"
)

// formatHits renders ranked results for agent consumption.
func formatHits(hits []store.Hit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "\n--- Result %d (score %.2f) ---\n", i+1, h.Score)
		writeEntry(&sb, h.Entry)
	}
	return sb.String()
}

func formatEntries(entries []facts.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d fact(s):\n", len(entries))
	for _, e := range entries {
		sb.WriteString("\n")
		writeEntry(&sb, e)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, e facts.Entry) {
	fmt.Fprintf(sb, "### %s\n", e.Title)
	fmt.Fprintf(sb, "Kind: %s | Repo: %s\n", e.Kind, e.Source)
	if e.SourcePath != "" {
		location := e.SourcePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		fmt.Fprintf(sb, "File: %s\n", location)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(sb, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}
	if e.Content != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}
}

// writeMapping renders an endpoint_mapping from its metadata so the call
// list stays structured even if the content text changes.
func writeMapping(sb *strings.Builder, e facts.Entry) {
	from := e.MetaString("fromRepo")
	if from == "" {
		from = e.Source
	}
	fmt.Fprintf(sb, "### %s -> %s\n", from, e.MetaString("toService"))
	if env := e.MetaString("envVar"); env != "" {
		fmt.Fprintf(sb, "Base URL from: %s\n", env)
	}
	var files []string
	if err := e.DecodeMeta("filePaths", &files); err == nil && len(files) > 0 {
		fmt.Fprintf(sb, "Files: %s\n", strings.Join(files, ", "))
	}
	var calls []outbound.Call
	if err := e.DecodeMeta("calls", &calls); err != nil {
		return
	}
	for _, c := range calls {
		fmt.Fprintf(sb, "- %s %s\n", c.Method, c.Path.String())
	}
}
