package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gavel-labs/gavel/internal/domain"
	"github.com/gavel-labs/gavel/internal/services/backtest"
	"github.com/gavel-labs/gavel/internal/services/portfolio"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	require.NoError(t, err)
	return parsed
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func position(t *testing.T, end string, ticker string, leg domain.Leg, weight string) domain.Position {
	t.Helper()
	periodEnd := day(t, end)
	return domain.Position{
		PeriodStart:  periodEnd.AddDate(0, 0, -6),
		PeriodEnd:    periodEnd,
		Ticker:       ticker,
		Leg:          leg,
		Weight:       decimal.RequireFromString(weight),
		ClosePrice:   decimal.NewFromInt(100),
		HoldingSize:  decimal.NewFromInt(1),
		HoldingValue: decimal.NewFromInt(100),
	}
}

func TestWriteWealthCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wealth.csv")

	wealth := []domain.WealthPoint{
		{Date: day(t, "2023-04-14"), Strategy: decimal.NewFromInt(10000), Benchmark: decimal.NewFromInt(10000)},
		{Date: day(t, "2023-04-21"), Strategy: decimal.RequireFromString("10500"), Benchmark: decimal.RequireFromString("10200")},
	}
	require.NoError(t, WriteWealthCSV(path, wealth))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"date", "wealth", "benchmark"}, rows[0])
	require.Equal(t, []string{"2023-04-14", "10000.000000", "10000.000000"}, rows[1])
	require.Equal(t, []string{"2023-04-21", "10500.000000", "10200.000000"}, rows[2])
}

func TestWriteCompositionCSVSkipsNonPositiveWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.csv")

	composition := []domain.Position{
		position(t, "2023-04-14", "AAPL", domain.LegLong, "0.8"),
		position(t, "2023-04-14", "XOM", domain.LegShort, "0"),
	}
	require.NoError(t, WriteCompositionCSV(path, composition))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	require.Equal(t, []string{
		"period_start", "period_end", "ticker", "leg",
		"weight", "close", "holding_size", "holding_value",
	}, rows[0])
	require.Equal(t, "AAPL", rows[1][2])
	require.Equal(t, "long", rows[1][3])
	require.Equal(t, "0.800000", rows[1][4])
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.yaml")

	summary := backtest.Summary{
		TotalReturn:          0.10,
		BenchmarkTotalReturn: 0.04,
		ExcessReturn:         0.06,
		CAGR:                 0.08,
		MaxDrawdown:          0.03,
		Periods:              3,
	}
	require.NoError(t, WriteSummary(path, "run-123", summary))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got runSummary
	require.NoError(t, yaml.Unmarshal(raw, &got))
	require.Equal(t, "run-123", got.RunID)
	require.NotEmpty(t, got.GeneratedAt)
	require.Equal(t, 3, got.Periods)
	require.Equal(t, 0.10, got.TotalReturn)
	require.Equal(t, 0.06, got.ExcessReturn)
	require.Equal(t, 0.03, got.MaxDrawdown)
}

type fixedPrices map[string]map[string]string

func (p fixedPrices) Close(ticker string, date time.Time) (decimal.Decimal, bool) {
	raw, ok := p[ticker][date.Format(time.DateOnly)]
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.RequireFromString(raw), true
}

func TestOutputsAreReproducible(t *testing.T) {
	prices := fixedPrices{
		"AAPL": {"2023-04-14": "100", "2023-04-21": "105", "2023-04-28": "110"},
		"MSFT": {"2023-04-14": "50", "2023-04-21": "55"},
		"XOM":  {"2023-04-14": "80", "2023-04-21": "76"},
		"SPX":  {"2023-04-14": "4000", "2023-04-21": "4100", "2023-04-28": "4200"},
	}
	targets := []portfolio.Target{
		{
			PeriodStart: day(t, "2023-04-08"),
			PeriodEnd:   day(t, "2023-04-14"),
			Long: []portfolio.Entry{
				{Ticker: "AAPL", Strength: 0.9, Weight: decimal.RequireFromString("0.6")},
				{Ticker: "MSFT", Strength: 0.8, Weight: decimal.RequireFromString("0.4")},
			},
			Short: []portfolio.Entry{
				{Ticker: "XOM", Strength: 0.75, Weight: decimal.NewFromInt(1)},
			},
		},
		{
			PeriodStart: day(t, "2023-04-15"),
			PeriodEnd:   day(t, "2023-04-21"),
			Long: []portfolio.Entry{
				{Ticker: "AAPL", Strength: 0.9, Weight: decimal.NewFromInt(1)},
			},
		},
	}
	cfg := backtest.Config{
		InitialWealth:   decimal.NewFromInt(10000),
		ShortScale:      decimal.RequireFromString("0.3"),
		BenchmarkTicker: "SPX",
	}

	run := func(dir string) (string, string) {
		engine, err := backtest.NewEngine(nil, prices, cfg)
		require.NoError(t, err)
		result, err := engine.Run(targets)
		require.NoError(t, err)

		wealthPath := filepath.Join(dir, "wealth.csv")
		compositionPath := filepath.Join(dir, "composition.csv")
		require.NoError(t, WriteWealthCSV(wealthPath, result.Wealth))
		require.NoError(t, WriteCompositionCSV(compositionPath, result.Composition))
		return wealthPath, compositionPath
	}

	firstWealth, firstComposition := run(t.TempDir())
	secondWealth, secondComposition := run(t.TempDir())

	// identical inputs and config reproduce the outputs byte for byte
	requireSameBytes(t, firstWealth, secondWealth)
	requireSameBytes(t, firstComposition, secondComposition)
}

func requireSameBytes(t *testing.T, first, second string) {
	t.Helper()
	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestSnapshot(t *testing.T) {
	composition := []domain.Position{
		position(t, "2023-04-14", "AAPL", domain.LegLong, "1"),
		position(t, "2023-04-21", "XOM", domain.LegLong, "0.6"),
		position(t, "2023-04-21", "CVX", domain.LegShort, "0.4"),
	}

	// mid-week query resolves to the most recent formed period
	current := Snapshot(composition, day(t, "2023-04-25"))
	require.Len(t, current, 2)
	require.Equal(t, "XOM", current[0].Ticker)
	require.Equal(t, "CVX", current[1].Ticker)

	earlier := Snapshot(composition, day(t, "2023-04-14"))
	require.Len(t, earlier, 1)
	require.Equal(t, "AAPL", earlier[0].Ticker)

	require.Empty(t, Snapshot(composition, day(t, "2023-04-01")))
	require.Empty(t, Snapshot(nil, day(t, "2023-04-25")))
}
