package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cortex/internal/diagrams"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/store"
)

const defaultLimit = store.DefaultSearchLimit

func (s *Server) handleRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.refresher.Refresh(ctx, request.GetBool("force_full", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	sum := res.Summary()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Indexed %d repo(s), %d fact(s)", sum.Repos, sum.Entries)
	if sum.CacheHit {
		sb.WriteString(" from cache")
	}
	fmt.Fprintf(&sb, " in %dms.\n", sum.DurationMS)
	if sum.Embedded > 0 {
		fmt.Fprintf(&sb, "Embedded %d fact(s).\n", sum.Embedded)
	}
	if len(sum.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range sum.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := request.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}

	st := s.refresher.Store()
	var hits []store.Hit
	if request.GetBool("semantic", false) {
		if s.semantic == nil {
			return mcp.NewToolResultError("semantic search is not enabled; set embeddings.enabled in .cortex.yml"), nil
		}
		results, err := s.semantic.Search(ctx, query, limit, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		for _, r := range results {
			if e, ok := st.At(r.Position(), r.Document.Metadata.FactID); ok {
				hits = append(hits, store.Hit{Entry: e, Score: float64(r.Similarity)})
			}
		}
	} else {
		hits = st.Search(query, limit)
	}

	if len(hits) == 0 {
		return mcp.NewToolResultText(emptyMessage(st, "No results found.")), nil
	}
	return mcp.NewToolResultText(formatHits(hits)), nil
}

func (s *Server) handleLookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: identifier"), nil
	}
	return s.entries(s.refresher.Store().FindByIdentifier(id), "No facts match "+quote(id)+".")
}

func (s *Server) handleRepo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}
	st := s.refresher.Store()
	summary, ok := st.FindRepoSummary(repo)
	if !ok {
		return mcp.NewToolResultError(emptyMessage(st, "Unknown repo "+quote(repo)+".")), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n", summary.Title, summary.Content)
	fmt.Fprintf(&sb, "\nEndpoints: %d\n", len(st.FindContracts(repo, "")))
	fmt.Fprintf(&sb, "Called by: %d repo(s)\n", st.CountCallersOfService(repo))
	if env, ok := st.FindEnvConfig(repo); ok {
		fmt.Fprintf(&sb, "\n## Environment\n\n%s\n", env.Content)
	}
	if mappings := st.FindEndpointMappings(repo, ""); len(mappings) > 0 {
		sb.WriteString("\n## Calls\n")
		for _, m := range mappings {
			sb.WriteString("\n")
			writeMapping(&sb, m)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleContracts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := s.refresher.Store().FindContracts(request.GetString("service", ""), request.GetString("path", ""))
	return s.entries(found, "No contracts found.")
}

func (s *Server) handleDependencies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := s.refresher.Store().FindDependencies(request.GetString("from", ""), request.GetString("to", ""))
	return s.entries(found, "No dependencies found.")
}

func (s *Server) handleMappings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := s.refresher.Store().FindEndpointMappings(request.GetString("from", ""), request.GetString("to", ""))
	if len(found) == 0 {
		return mcp.NewToolResultText(emptyMessage(s.refresher.Store(), "No endpoint mappings found.")), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d mapping(s):\n", len(found))
	for _, m := range found {
		sb.WriteString("\n")
		writeMapping(&sb, m)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleWhoCalls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	callers := s.refresher.Store().CallersOfPath(path)
	if len(callers) == 0 {
		return mcp.NewToolResultText(emptyMessage(s.refresher.Store(), "No callers of "+quote(path)+" found.")), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Callers of %s\n\n", path)
	for _, c := range callers {
		fmt.Fprintf(&sb, "- %s -> %s: %s %s (%s)\n", c.FromRepo, c.ToService, c.Method, c.Path, strings.Join(c.FilePaths, ", "))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleDecisions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.entries(s.refresher.Store().FindDecisions(request.GetString("topic", "")), "No decisions found.")
}

func (s *Server) handleGlossary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := s.refresher.Store().FindGlossary(request.GetString("term", ""), request.GetString("repo", ""))
	return s.entries(found, "No glossary terms found.")
}

func (s *Server) handleTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := s.refresher.Store().FindDBTables(request.GetString("repo", ""), request.GetString("table", ""))
	return s.entries(found, "No tables found.")
}

func (s *Server) handleChangelog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.entries(s.refresher.Store().FindChangelog(request.GetString("repo", "")), "No changelog entries found.")
}

func (s *Server) handleEnv(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}
	env, ok := s.refresher.Store().FindEnvConfig(repo)
	if !ok {
		return mcp.NewToolResultText(emptyMessage(s.refresher.Store(), "No environment variables found for "+quote(repo)+".")), nil
	}
	return mcp.NewToolResultText(formatEntries([]facts.Entry{env})), nil
}

func (s *Server) handleServiceGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g := diagrams.BuildGraph(s.refresher.Store().Entries())
	if len(g.Nodes) == 0 {
		return mcp.NewToolResultText(emptyMessage(s.refresher.Store(), "No services found.")), nil
	}
	return mcp.NewToolResultText("```mermaid\n" + g.Mermaid() + "```\n"), nil
}

func (s *Server) entries(found []facts.Entry, none string) (*mcp.CallToolResult, error) {
	if len(found) == 0 {
		return mcp.NewToolResultText(emptyMessage(s.refresher.Store(), none)), nil
	}
	return mcp.NewToolResultText(formatEntries(found)), nil
}

// emptyMessage hints at a refresh when nothing has been indexed yet.
func emptyMessage(st *store.Store, msg string) string {
	if st.Len() == 0 {
		return msg + " The workspace has not been indexed yet. Call cortex_refresh first."
	}
	return msg
}

func quote(s string) string { return fmt.Sprintf("%q", s) }
