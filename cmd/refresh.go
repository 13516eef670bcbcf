package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/progress"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Scan the workspace and rebuild the fact cache",
	Long: `Discovers every repo under the workspace root and extracts its facts. When
no repo directory changed since the last run the cached facts are reused,
unless --force is given.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().Bool("force", false, "ignore the cache and extract every repo")
	refreshCmd.Flags().Bool("json", false, "print the run summary as JSON")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	reporter := progress.NewReporter(os.Stderr)
	res, err := e.refresher.RefreshWithProgress(cmd.Context(), force, progress.Func(reporter))
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	sum := res.Summary()
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	source := "extracted"
	if sum.CacheHit {
		source = "from cache"
	}
	fmt.Printf("Indexed %d repos, %d facts (%s) in %dms\n", sum.Repos, sum.Entries, source, sum.DurationMS)
	if sum.Embedded > 0 {
		fmt.Printf("  Embedded: %d\n", sum.Embedded)
	}
	fmt.Printf("  Cache: %s\n", e.refresher.CachePath())
	for _, w := range sum.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}
	return nil
}
