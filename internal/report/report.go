// Package report serializes a finished run to its output tables and answers
// point-in-time portfolio queries against the composition history.
package report

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gavel-labs/gavel/internal/domain"
	"github.com/gavel-labs/gavel/internal/services/backtest"
)

// WriteWealthCSV writes the strategy and benchmark wealth curves, one row
// per rebalance date in input order.
func WriteWealthCSV(path string, wealth []domain.WealthPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create wealth file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "wealth", "benchmark"}); err != nil {
		return err
	}
	for _, point := range wealth {
		row := []string{
			point.Date.Format(time.DateOnly),
			point.Strategy.StringFixed(6),
			point.Benchmark.StringFixed(6),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WriteCompositionCSV writes per-period holdings. Rows without positive
// weight carry no position and are skipped.
func WriteCompositionCSV(path string, composition []domain.Position) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create composition file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"period_start",
		"period_end",
		"ticker",
		"leg",
		"weight",
		"close",
		"holding_size",
		"holding_value",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, pos := range composition {
		if pos.Weight.Sign() <= 0 {
			continue
		}
		row := []string{
			pos.PeriodStart.Format(time.DateOnly),
			pos.PeriodEnd.Format(time.DateOnly),
			pos.Ticker,
			string(pos.Leg),
			pos.Weight.StringFixed(6),
			pos.ClosePrice.StringFixed(6),
			pos.HoldingSize.StringFixed(6),
			pos.HoldingValue.StringFixed(6),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

type runSummary struct {
	RunID                string  `yaml:"run_id"`
	GeneratedAt          string  `yaml:"generated_at"`
	Periods              int     `yaml:"periods"`
	TotalReturn          float64 `yaml:"total_return"`
	BenchmarkTotalReturn float64 `yaml:"benchmark_total_return"`
	ExcessReturn         float64 `yaml:"excess_return"`
	CAGR                 float64 `yaml:"cagr"`
	MaxDrawdown          float64 `yaml:"max_drawdown"`
}

// WriteSummary writes the run identity and headline metrics as YAML so a
// result directory is traceable back to the journal rows that produced it.
func WriteSummary(path, runID string, summary backtest.Summary) error {
	out := runSummary{
		RunID:                runID,
		GeneratedAt:          time.Now().UTC().Format(time.RFC3339),
		Periods:              summary.Periods,
		TotalReturn:          summary.TotalReturn,
		BenchmarkTotalReturn: summary.BenchmarkTotalReturn,
		ExcessReturn:         summary.ExcessReturn,
		CAGR:                 summary.CAGR,
		MaxDrawdown:          summary.MaxDrawdown,
	}

	raw, err := yaml.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "marshal summary")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(err, "write summary file")
	}
	return nil
}

// Snapshot returns the portfolio in force at a given date: the holdings of
// the latest period formed on or before asOf. An asOf before the first
// period returns nothing.
func Snapshot(composition []domain.Position, asOf time.Time) []domain.Position {
	var latest time.Time
	for _, pos := range composition {
		if pos.PeriodEnd.After(asOf) {
			continue
		}
		if pos.PeriodEnd.After(latest) {
			latest = pos.PeriodEnd
		}
	}
	if latest.IsZero() {
		return nil
	}

	var out []domain.Position
	for _, pos := range composition {
		if pos.PeriodEnd.Equal(latest) {
			out = append(out, pos)
		}
	}
	return out
}
