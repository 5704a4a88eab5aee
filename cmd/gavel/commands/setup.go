package commands

import (
	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive wizard that writes config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setup.RunTUI()
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
