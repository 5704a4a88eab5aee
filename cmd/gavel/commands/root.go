// Package commands wires the gavel CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "Signal-matching and long/short backtesting for congressional trade disclosures",
	Long: `Gavel evaluates whether legislators' disclosed trades systematically beat
the market. It links each trade to the trading legislator's committee
memberships, scores the committees against the traded firm's industry,
and simulates a weekly long/short portfolio built from the flagged
trades, tracked against a benchmark.

Commands:
  backtest   run the full pipeline and write the result tables
  match      score the committee x industry grid and print it
  setup      interactive wizard that writes config.yaml`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to yaml config")
}
