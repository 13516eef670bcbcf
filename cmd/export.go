package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/db"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current facts to a SQLite database",
	Long:  `Refreshes if needed, then replaces the facts table of the given SQLite file with the current fact collection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		ctx := cmd.Context()

		e, err := loadEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		database, err := db.Open(out)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.ReplaceFacts(ctx, e.refresher.Store().Entries()); err != nil {
			return err
		}
		counts, err := database.CountByKind(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d facts to %s\n", e.refresher.Store().Len(), database.Path())
		for _, c := range counts {
			fmt.Printf("  %-22s %d\n", c.Kind, c.Count)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "cortex-facts.db", "SQLite file to write")
	rootCmd.AddCommand(exportCmd)
}
