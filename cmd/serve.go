package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/cortex/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing cortex_* tools
for AI agents. Cached facts are served immediately while a refresh runs in
the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		e, err := newEngine(cfg, logger, true)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		startRefresh(ctx, e)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		logger.Info("cortex MCP server started on stdio", "workspace", cfg.WorkspaceRoot, "facts", e.refresher.Store().Len())

		srv := mcpserver.NewServer(e.refresher, e.vectorStore(), logger)
		if err := srv.Serve(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

// startRefresh serves the cache right away and refreshes in the background.
func startRefresh(ctx context.Context, e *engine) {
	if e.warm(ctx) {
		e.logger.Debug("serving cached facts", "facts", e.refresher.Store().Len())
	}
	go func() {
		res, err := e.refresher.Refresh(ctx, false)
		if err != nil {
			e.logger.Warn("initial refresh failed", "error", err)
			return
		}
		logWarnings(e.logger, res)
	}()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
