package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/diagrams"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the service call graph as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Print(diagrams.BuildGraph(e.refresher.Store().Entries()).Mermaid())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
