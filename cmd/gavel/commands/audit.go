package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/config"
	"github.com/gavel-labs/gavel/internal/journal"
)

var auditCmd = &cobra.Command{
	Use:   "audit <run-id>",
	Short: "Print every journaled decision of a past run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Journal.Type != config.JournalSQLite {
			return errors.Errorf("audit needs journal.type %q, configured type is %q",
				config.JournalSQLite, cfg.Journal.Type)
		}

		j, err := journal.NewSQLite(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()

		decisions, err := j.ListDecisionsByRun(args[0])
		if err != nil {
			return err
		}
		if len(decisions) == 0 {
			return errors.Errorf("no decisions recorded for run %s", args[0])
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DISCLOSED\tLEGISLATOR\tTICKER\tDIRECTION\tSIZE\tEST AMOUNT\tFLAGGED\tCOMMITTEE\tSTRENGTH\tREASON")
		for _, d := range decisions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%t\t%s\t%.4f\t%s\n",
				d.DisclosureDate.Format(time.DateOnly), d.LegislatorID, d.Ticker,
				d.Direction, d.Size, d.SizeMidpoint.String(), d.Flagged,
				d.CommitteeID, d.Strength, d.Reason)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
