package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	colPriceDate  = "date"
	colPriceClose = "close"
)

var priceColumns = []string{colPriceDate, colPriceClose}

// PriceStore serves Friday closing prices keyed by ticker and date. The
// backtest only rebalances on Fridays, so all other rows are discarded at
// load time; a holiday Friday simply has no close, which downstream treats
// as a missing price.
type PriceStore struct {
	closes map[string]map[string]decimal.Decimal
	logger *zap.Logger
}

// NewPriceStore returns an empty store.
func NewPriceStore(logger *zap.Logger) *PriceStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceStore{
		closes: make(map[string]map[string]decimal.Decimal),
		logger: logger,
	}
}

// LoadDir reads every "<TICKER>.csv" in dir into the store.
func (s *PriceStore) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, "read price directory")
	}

	loaded := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		ticker := strings.TrimSuffix(name, ".csv")
		if err := s.LoadFile(filepath.Join(dir, name), ticker); err != nil {
			return errors.Wrapf(err, "price file %s", name)
		}
		loaded++
	}
	if loaded == 0 {
		return errors.Errorf("no price files in %s", dir)
	}

	s.logger.Info("loaded price history", zap.String("dir", dir), zap.Int("tickers", loaded))
	return nil
}

// LoadFile reads one price CSV into the store under the given ticker. Used
// for the benchmark series, which lives outside the per-ticker directory.
// The file needs Date and Close columns; anything else is ignored, so raw
// OHLCV exports work as-is. A ticker can only be loaded once; a benchmark
// colliding with a file in the price directory is an error, not an
// overwrite.
func (s *PriceStore) LoadFile(path, ticker string) error {
	if s.HasTicker(ticker) {
		return errors.Errorf("ticker %s already loaded", ticker)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open price file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return errors.Wrap(err, "read price header")
	}
	cols, err := indexColumns(header, priceColumns)
	if err != nil {
		return errors.Wrap(err, "price header")
	}

	series := make(map[string]decimal.Decimal)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.Warn("skipping unreadable price row",
				zap.String("ticker", ticker), zap.Int("line", line), zap.Error(err))
			continue
		}

		if cols[colPriceDate] >= len(record) || cols[colPriceClose] >= len(record) {
			s.logger.Warn("skipping short price row", zap.String("ticker", ticker), zap.Int("line", line))
			continue
		}
		dateField := strings.TrimSpace(record[cols[colPriceDate]])
		closeField := strings.TrimSpace(record[cols[colPriceClose]])

		date, err := time.Parse(time.DateOnly, dateField)
		if err != nil {
			s.logger.Warn("skipping price row with bad date",
				zap.String("ticker", ticker), zap.Int("line", line), zap.String("date", dateField))
			continue
		}
		if date.Weekday() != time.Friday {
			continue
		}

		price, err := decimal.NewFromString(closeField)
		if err != nil || price.LessThanOrEqual(decimal.Zero) {
			s.logger.Warn("skipping price row with bad close",
				zap.String("ticker", ticker), zap.Int("line", line), zap.String("close", closeField))
			continue
		}

		series[dateField] = price
	}

	if len(series) == 0 {
		return errors.Errorf("no usable friday closes for %s", ticker)
	}

	s.closes[ticker] = series
	return nil
}

// Close returns the closing price for a ticker on a given Friday.
func (s *PriceStore) Close(ticker string, date time.Time) (decimal.Decimal, bool) {
	price, ok := s.closes[ticker][date.Format(time.DateOnly)]
	return price, ok
}

// HasTicker reports whether any price history was loaded for the ticker.
func (s *PriceStore) HasTicker(ticker string) bool {
	_, ok := s.closes[ticker]
	return ok
}

// Tickers returns all loaded tickers sorted.
func (s *PriceStore) Tickers() []string {
	out := make([]string, 0, len(s.closes))
	for ticker := range s.closes {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}
