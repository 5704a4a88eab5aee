// Package dataset loads the run inputs: the disclosure feed, the committee
// roster with firm metadata and the price history. Loaders are strict about
// file shape but tolerant of bad rows: a malformed record is dropped and
// logged, never fatal.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gavel-labs/gavel/internal/domain"
)

// column names of the capitol trades disclosure export
const (
	colPolitician = "politician"
	colTicker     = "ticker"
	colPublished  = "published"
	colTraded     = "traded"
	colOwner      = "owner"
	colType       = "type"
	colSize       = "size"
)

var tradeColumns = []string{colPolitician, colTicker, colPublished, colTraded, colOwner, colType, colSize}

// TradeFilters controls which cleaning rules apply on load. The zero value
// matches the default cleaning behavior.
type TradeFilters struct {
	// KeepSmall keeps "< 1K" sized trades instead of dropping them.
	KeepSmall bool
	// KeepChild keeps child-owned trades instead of dropping them.
	KeepChild bool
}

// LoadTrades reads the disclosure feed CSV and returns cleaned trades:
//   - tickers lose their ":US" exchange suffix
//   - rows without a ticker are dropped
//   - "< 1K" sized trades are dropped unless filters.KeepSmall
//   - child-owned trades are dropped unless filters.KeepChild
//   - exchanges, receives and otherwise malformed rows are dropped and logged
func LoadTrades(path string, filters TradeFilters, logger *zap.Logger) ([]domain.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open trades file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read trades header")
	}
	cols, err := indexColumns(header, tradeColumns)
	if err != nil {
		return nil, errors.Wrap(err, "trades header")
	}

	var trades []domain.Trade
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping unreadable trade row", zap.Int("line", line), zap.Error(err))
			continue
		}

		trade, err := parseTrade(record, cols)
		if err != nil {
			logger.Debug("dropping trade row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if trade.Size.BelowThousand() && !filters.KeepSmall {
			continue
		}
		if trade.Owner == domain.TradeOwnerChild && !filters.KeepChild {
			continue
		}
		trades = append(trades, trade)
	}

	logger.Info("loaded trades", zap.String("path", path), zap.Int("count", len(trades)))
	return trades, nil
}

func parseTrade(record []string, cols map[string]int) (domain.Trade, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ticker := CleanTicker(field(colTicker))
	if ticker == "" || strings.EqualFold(ticker, "n/a") {
		return domain.Trade{}, errors.New("no ticker")
	}

	direction, err := domain.ParseTradeDirection(field(colType))
	if err != nil {
		return domain.Trade{}, err
	}

	size, err := domain.ParseSizeBucket(field(colSize))
	if err != nil {
		return domain.Trade{}, errors.Wrap(err, "size")
	}

	transacted, err := time.Parse(time.DateOnly, field(colTraded))
	if err != nil {
		return domain.Trade{}, errors.Wrap(err, "traded date")
	}
	disclosed, err := time.Parse(time.DateOnly, field(colPublished))
	if err != nil {
		return domain.Trade{}, errors.Wrap(err, "published date")
	}

	return domain.NewTrade(
		field(colPolitician),
		ticker,
		transacted,
		disclosed,
		direction,
		domain.ParseTradeOwner(field(colOwner)),
		size,
	)
}

// CleanTicker strips the exchange suffix the disclosure feed carries, so
// tickers line up with price file names ("AAPL:US" -> "AAPL").
func CleanTicker(ticker string) string {
	return strings.TrimSuffix(strings.TrimSpace(ticker), ":US")
}

// FilterPriced drops trades in names the price store has never heard of.
// Without price history a trade can neither be weighted nor marked to market.
func FilterPriced(trades []domain.Trade, prices *PriceStore, logger *zap.Logger) []domain.Trade {
	kept := make([]domain.Trade, 0, len(trades))
	for _, trade := range trades {
		if !prices.HasTicker(trade.Ticker) {
			logger.Debug("dropping trade without price history", zap.String("ticker", trade.Ticker))
			continue
		}
		kept = append(kept, trade)
	}
	if dropped := len(trades) - len(kept); dropped > 0 {
		logger.Info("dropped trades without price history", zap.Int("dropped", dropped))
	}
	return kept
}

// indexColumns maps required column names to their positions in the header.
func indexColumns(header, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cols := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := positions[name]
		if !ok {
			return nil, errors.Errorf("missing column %q", name)
		}
		cols[name] = i
	}
	return cols, nil
}
