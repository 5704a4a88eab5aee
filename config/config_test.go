package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `backtest:
  start_date: "2021-01-01"
  end_date: "2023-01-01"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, ProviderLocal, cfg.Matcher.Provider)
	require.Equal(t, 0.7, cfg.Matcher.Threshold)
	require.Equal(t, 8, cfg.Matcher.Concurrency)
	require.True(t, cfg.Portfolio.ShortScale.Equal(decimal.RequireFromString("0.3")))
	require.True(t, cfg.Backtest.InitialWealth.Equal(decimal.NewFromInt(10000)))
	require.Equal(t, "SPX", cfg.Backtest.BenchmarkTicker)
	require.Equal(t, JournalCSV, cfg.Journal.Type)
	require.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `data:
  trades_file: input/capitol_trades.csv
  keep_child_trades: true
matcher:
  provider: openai
  api_url: https://api.openai.com/v1/embeddings
  model: text-embedding-3-small
  threshold: 0.55
portfolio:
  short_scale: "0.2"
backtest:
  initial_wealth: "250000"
  start_date: "2021-01-01"
  end_date: "2022-06-30"
  benchmark_ticker: SPY
journal:
  type: sqlite
  path: out/journal.db
`))
	require.NoError(t, err)

	require.Equal(t, "input/capitol_trades.csv", cfg.Data.TradesFile)
	require.True(t, cfg.Data.KeepChildTrades)
	require.False(t, cfg.Data.KeepSmallTrades)
	require.Equal(t, ProviderOpenAI, cfg.Matcher.Provider)
	require.Equal(t, 0.55, cfg.Matcher.Threshold)
	require.True(t, cfg.Portfolio.ShortScale.Equal(decimal.RequireFromString("0.2")))
	require.True(t, cfg.Backtest.InitialWealth.Equal(decimal.NewFromInt(250000)))
	require.Equal(t, time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC), cfg.Backtest.EndDate)
	require.Equal(t, "SPY", cfg.Backtest.BenchmarkTicker)
	require.Equal(t, JournalSQLite, cfg.Journal.Type)
}

func TestLoadKeepsExplicitZeroThreshold(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+"matcher:\n  threshold: 0\n"))
	require.NoError(t, err)
	require.Equal(t, 0.0, cfg.Matcher.Threshold)

	// unset still falls back to the default
	cfg, err = Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, 0.7, cfg.Matcher.Threshold)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing dates":  `matcher: {provider: local}`,
		"openai no url":  minimalConfig + "matcher:\n  provider: openai\n",
		"bad threshold":  minimalConfig + "matcher:\n  threshold: 1.5\n",
		"no workers":     minimalConfig + "matcher:\n  concurrency: 0\n",
		"bad scale":      minimalConfig + "portfolio:\n  short_scale: \"1.5\"\n",
		"reversed dates": "backtest:\n  start_date: \"2023-01-01\"\n  end_date: \"2021-01-01\"\n",
		"bad journal":    minimalConfig + "journal:\n  type: kafka\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
		})
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("EMBEDDINGS_API_KEY", "sk-test")
	require.Equal(t, "sk-test", Default().Matcher.APIKey())
}
