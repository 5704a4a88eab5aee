package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gavel-labs/gavel/config"
	"github.com/gavel-labs/gavel/internal/dataset"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score the committee x industry grid and print the match matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		roster, err := dataset.LoadRoster(cfg.Data.MembershipFile, cfg.Data.FirmsFile, logger)
		if err != nil {
			return err
		}

		matches, err := buildMatches(cmd.Context(), logger, cfg, roster)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COMMITTEE\tTICKER\tINDUSTRY\tSTRENGTH")
		for _, m := range matches.All() {
			committee, _ := roster.Committee(m.CommitteeID)
			firm, _ := roster.Firm(m.Ticker)
			flag := " "
			if m.Strength > cfg.Matcher.Threshold {
				flag = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.4f %s\n", committee.Description, m.Ticker, firm.Industry, m.Strength, flag)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
