package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/outbound"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the HTTP endpoints services expose",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")
		path, _ := cmd.Flags().GetString("path")

		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		found := e.refresher.Store().FindContracts(service, path)
		if len(found) == 0 {
			fmt.Println("No contracts found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SERVICE\tENDPOINT\tFILE")
		for _, c := range found {
			fmt.Fprintf(w, "%s\t%s\t%s:%d\n", c.Source, c.Title, c.SourcePath, c.Line)
		}
		return w.Flush()
	},
}

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Show which services call which, and the endpoints they use",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		found := e.refresher.Store().FindEndpointMappings(from, to)
		if len(found) == 0 {
			fmt.Println("No endpoint mappings found.")
			return nil
		}
		for _, m := range found {
			caller := m.MetaString("fromRepo")
			if caller == "" {
				caller = m.Source
			}
			fmt.Printf("%s -> %s", caller, m.MetaString("toService"))
			if env := m.MetaString("envVar"); env != "" {
				fmt.Printf(" (via %s)", env)
			}
			fmt.Println()
			var calls []outbound.Call
			if err := m.DecodeMeta("calls", &calls); err == nil {
				for _, c := range calls {
					fmt.Printf("  %-6s %s\n", c.Method, c.Path.String())
				}
			}
		}
		return nil
	},
}

var whoCallsCmd = &cobra.Command{
	Use:   "who-calls [path]",
	Short: "List every repo that calls an endpoint path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		callers := e.refresher.Store().CallersOfPath(args[0])
		if len(callers) == 0 {
			fmt.Printf("No callers of %q found.\n", args[0])
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CALLER\tSERVICE\tMETHOD\tPATH\tFILES")
		for _, c := range callers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.FromRepo, c.ToService, c.Method, c.Path, strings.Join(c.FilePaths, ", "))
		}
		return w.Flush()
	},
}

func init() {
	contractsCmd.Flags().String("service", "", "only endpoints of this repo")
	contractsCmd.Flags().String("path", "", "only endpoints whose path contains this fragment")
	mappingsCmd.Flags().String("from", "", "calling repo")
	mappingsCmd.Flags().String("to", "", "called service")
	rootCmd.AddCommand(contractsCmd, mappingsCmd, whoCallsCmd)
}
