// Package mcp exposes the fact store to coding agents as MCP tools.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/cortex/internal/cache"
	"github.com/ziadkadry99/cortex/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server answering from one refresher's store.
type Server struct {
	refresher *cache.Refresher
	semantic  vectordb.VectorStore // nil when embeddings are disabled
	logger    *slog.Logger
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. semantic may be nil.
func NewServer(refresher *cache.Refresher, semantic vectordb.VectorStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		refresher: refresher,
		semantic:  semantic,
		logger:    logger,
	}

	s.mcp = server.NewMCPServer(
		"cortex",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(refreshTool, s.handleRefresh)
	s.mcp.AddTool(searchTool, s.handleSearch)
	s.mcp.AddTool(lookupTool, s.handleLookup)
	s.mcp.AddTool(repoTool, s.handleRepo)
	s.mcp.AddTool(contractsTool, s.handleContracts)
	s.mcp.AddTool(dependenciesTool, s.handleDependencies)
	s.mcp.AddTool(mappingsTool, s.handleMappings)
	s.mcp.AddTool(whoCallsTool, s.handleWhoCalls)
	s.mcp.AddTool(decisionsTool, s.handleDecisions)
	s.mcp.AddTool(glossaryTool, s.handleGlossary)
	s.mcp.AddTool(tablesTool, s.handleTables)
	s.mcp.AddTool(changelogTool, s.handleChangelog)
	s.mcp.AddTool(envTool, s.handleEnv)
	s.mcp.AddTool(serviceGraphTool, s.handleServiceGraph)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
