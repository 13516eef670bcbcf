package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/facts"
)

var reposCmd = &cobra.Command{
	Use:   "repos [id]",
	Short: "List discovered repos, or show one in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		st := e.refresher.Store()

		if len(args) == 1 {
			summary, ok := st.FindRepoSummary(args[0])
			if !ok {
				return fmt.Errorf("repo %q not found", args[0])
			}
			fmt.Printf("%s\n\n%s\n\n", summary.Title, summary.Content)
			fmt.Printf("  Endpoints: %d\n", len(st.FindContracts(args[0], "")))
			fmt.Printf("  Called by: %d repos\n", st.CountCallersOfService(args[0]))
			fmt.Printf("  Calls: %d services\n", len(st.FindEndpointMappings(args[0], "")))
			if env, ok := st.FindEnvConfig(args[0]); ok {
				fmt.Printf("  Env: %s\n", env.Content)
			}
			return nil
		}

		summaries := st.ByKind(facts.KindRepoSummary)
		if len(summaries) == 0 {
			fmt.Println("No repos found under the workspace root.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "REPO\tVARIANT\tENDPOINTS\tCALLERS\tSUMMARY")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				s.Source, s.MetaString("variant"),
				len(st.FindContracts(s.Source, "")),
				st.CountCallersOfService(s.Source),
				truncate(s.Content, 60))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
}
