package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const aaplPrices = `Date,Open,High,Low,Close,Adj Close,Volume
2023-04-13,168.0,172.0,167.5,171.00,171.00,60000000
2023-04-14,170.0,172.5,169.0,172.50,172.50,50000000
2023-04-21,171.0,173.0,170.0,171.25,171.25,48000000
bad-date,1,1,1,1,1,1
2023-04-28,172.0,176.0,171.5,not-a-number,0,47000000
`

func parseDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	require.NoError(t, err)
	return parsed
}

func TestPriceStoreLoadFile(t *testing.T) {
	store := NewPriceStore(zap.NewNop())
	require.NoError(t, store.LoadFile(writeFile(t, "AAPL.csv", aaplPrices), "AAPL"))

	// Fridays only: the Thursday row never makes it in
	_, ok := store.Close("AAPL", parseDate(t, "2023-04-13"))
	require.False(t, ok)

	price, ok := store.Close("AAPL", parseDate(t, "2023-04-14"))
	require.True(t, ok)
	require.True(t, price.Equal(decimal.RequireFromString("172.50")))

	// malformed rows are skipped, not fatal
	_, ok = store.Close("AAPL", parseDate(t, "2023-04-28"))
	require.False(t, ok)

	require.True(t, store.HasTicker("AAPL"))
	require.False(t, store.HasTicker("XOM"))
}

func TestPriceStoreLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(aaplPrices), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "XOM.csv"), []byte(
		"Date,Close\n2023-04-14,115.25\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	store := NewPriceStore(zap.NewNop())
	require.NoError(t, store.LoadDir(dir))

	require.Equal(t, []string{"AAPL", "XOM"}, store.Tickers())

	price, ok := store.Close("XOM", parseDate(t, "2023-04-14"))
	require.True(t, ok)
	require.True(t, price.Equal(decimal.RequireFromString("115.25")))
}

func TestPriceStoreLoadDirEmpty(t *testing.T) {
	store := NewPriceStore(zap.NewNop())
	require.Error(t, store.LoadDir(t.TempDir()))
}

func TestPriceStoreRejectsDuplicateTicker(t *testing.T) {
	store := NewPriceStore(zap.NewNop())
	require.NoError(t, store.LoadFile(writeFile(t, "SPX.csv", "Date,Close\n2023-04-14,4100.0\n"), "SPX"))

	// a benchmark sharing a ticker with the price directory must not
	// overwrite the loaded series
	err := store.LoadFile(writeFile(t, "benchmark.csv", "Date,Close\n2023-04-14,9999.0\n"), "SPX")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already loaded")

	price, ok := store.Close("SPX", parseDate(t, "2023-04-14"))
	require.True(t, ok)
	require.True(t, price.Equal(decimal.RequireFromString("4100.0")))
}

func TestPriceStoreNoUsableCloses(t *testing.T) {
	store := NewPriceStore(zap.NewNop())
	err := store.LoadFile(writeFile(t, "THIN.csv", "Date,Close\n2023-04-13,10.0\n"), "THIN")
	require.Error(t, err)
	require.Contains(t, err.Error(), "friday")
}
