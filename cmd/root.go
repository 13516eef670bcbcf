package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/config"
)

var (
	cfgFile       string
	workspaceFlag string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "cortex",
	Short: "Cross-repo knowledge index for multi-service workspaces",
	Long: `Cortex scans a workspace of service repositories, extracts HTTP contracts,
outbound service calls, docs, ADRs, glossary terms, database tables and
conventions, and answers questions about them from the CLI, an HTTP API,
or an MCP server for coding agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFileName, "config file path")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace root (overrides workspace_root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
