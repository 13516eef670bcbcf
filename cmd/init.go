package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cortex/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cortex configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure cortex for your workspace and generates a .cortex.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
