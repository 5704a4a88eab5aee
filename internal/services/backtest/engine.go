// Package backtest walks the periodic portfolio forward in time, marking
// positions to market and compounding wealth against a benchmark.
package backtest

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gavel-labs/gavel/internal/domain"
	"github.com/gavel-labs/gavel/internal/services/portfolio"
)

// PriceSource serves period-end closing prices. The backtest only ever asks
// for the rebalance dates, so weekly closes are enough.
type PriceSource interface {
	Close(ticker string, date time.Time) (decimal.Decimal, bool)
}

// Config backtest parameters.
type Config struct {
	// InitialWealth starting deposit; the first wealth point equals it exactly.
	InitialWealth decimal.Decimal
	// ShortScale fraction of wealth sold short when the short leg is
	// non-empty. The long leg is levered to 1+ShortScale in those periods, so
	// net exposure stays at 1. A simulation convention, not observed capital.
	ShortScale decimal.Decimal
	// BenchmarkTicker the passive reference series, e.g. "SPX".
	BenchmarkTicker string
}

func (c Config) validate() error {
	if c.InitialWealth.LessThanOrEqual(decimal.Zero) {
		return errors.New("initial wealth must be positive")
	}
	if c.ShortScale.IsNegative() || c.ShortScale.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.Errorf("short scale %s outside [0,1)", c.ShortScale)
	}
	if c.BenchmarkTicker == "" {
		return errors.New("benchmark ticker is required")
	}
	return nil
}

// Result everything one run produces.
type Result struct {
	// Wealth strategy and benchmark curves; one leading point at the initial
	// basis, then one point per period.
	Wealth []domain.WealthPoint
	// Composition one row per held name per period, weight > 0 only.
	Composition []domain.Position
	// Summary descriptive performance metrics over the curves.
	Summary Summary
}

// Engine the mark-to-market fold. Inherently sequential: each period
// compounds on the previous wealth value, so periods are never processed in
// parallel.
type Engine struct {
	prices PriceSource
	logger *zap.Logger
	cfg    Config
}

// NewEngine returns a configured engine.
func NewEngine(logger *zap.Logger, prices PriceSource, cfg Config) (*Engine, error) {
	if prices == nil {
		return nil, errors.New("price source is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid backtest config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{prices: prices, logger: logger, cfg: cfg}, nil
}

// Run folds the chronological target sequence into wealth and composition
// series. A target formed at Friday F is priced at F's close and held for
// one week; its return lands in the wealth point at F+7. A name missing
// either the formation or the valuation close is excluded for that period
// and the rest of its leg is renormalized; a benchmark gap fails the run.
func (e *Engine) Run(targets []portfolio.Target) (*Result, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets to backtest")
	}
	for i := 1; i < len(targets); i++ {
		if !targets[i].PeriodEnd.Equal(targets[i-1].PeriodEnd.AddDate(0, 0, 7)) {
			return nil, errors.Errorf("target sequence has a gap between %s and %s",
				targets[i-1].PeriodEnd.Format(time.DateOnly), targets[i].PeriodEnd.Format(time.DateOnly))
		}
	}

	wealth := e.cfg.InitialWealth
	benchWealth := e.cfg.InitialWealth

	result := &Result{
		Wealth: []domain.WealthPoint{{
			Date:      targets[0].PeriodEnd,
			Strategy:  wealth,
			Benchmark: benchWealth,
		}},
	}

	for _, target := range targets {
		formation := target.PeriodEnd
		valuation := formation.AddDate(0, 0, 7)

		long := e.priceLeg(target.Long, domain.LegLong, formation, valuation)
		short := e.priceLeg(target.Short, domain.LegShort, formation, valuation)

		// exposure is decided after missing-price exclusions: a short leg
		// that lost all of its names carries no short exposure
		shortScale := decimal.Zero
		if len(short) > 0 {
			shortScale = e.cfg.ShortScale
		}
		longScale := decimal.NewFromInt(1).Add(shortScale)

		longCapital := wealth.Mul(longScale)
		shortCapital := wealth.Mul(shortScale)
		for _, h := range long {
			pos, err := domain.NewPosition(target.PeriodStart, formation, h.ticker, domain.LegLong, h.weight, h.formationClose, longCapital)
			if err != nil {
				return nil, errors.Wrapf(err, "period %s", formation.Format(time.DateOnly))
			}
			result.Composition = append(result.Composition, pos)
		}
		for _, h := range short {
			pos, err := domain.NewPosition(target.PeriodStart, formation, h.ticker, domain.LegShort, h.weight, h.formationClose, shortCapital)
			if err != nil {
				return nil, errors.Wrapf(err, "period %s", formation.Format(time.DateOnly))
			}
			result.Composition = append(result.Composition, pos)
		}

		periodReturn := longScale.Mul(legReturn(long)).Sub(shortScale.Mul(legReturn(short)))
		wealth = wealth.Mul(decimal.NewFromInt(1).Add(periodReturn))

		benchReturn, err := e.benchmarkReturn(formation, valuation)
		if err != nil {
			return nil, err
		}
		benchWealth = benchWealth.Mul(decimal.NewFromInt(1).Add(benchReturn))

		result.Wealth = append(result.Wealth, domain.WealthPoint{
			Date:      valuation,
			Strategy:  wealth,
			Benchmark: benchWealth,
		})
	}

	result.Summary = summarize(result.Wealth)

	e.logger.Info("backtest finished",
		zap.Int("periods", len(targets)),
		zap.String("final_wealth", wealth.StringFixed(2)),
		zap.String("final_benchmark", benchWealth.StringFixed(2)))

	return result, nil
}

// holding one priced, renormalized leg entry.
type holding struct {
	ticker         string
	weight         decimal.Decimal
	formationClose decimal.Decimal
	valuationClose decimal.Decimal
}

// priceLeg resolves prices for a leg and renormalizes the surviving weights.
// Names without both closes are dropped and logged; they are never silently
// marked at a substitute price.
func (e *Engine) priceLeg(entries []portfolio.Entry, leg domain.Leg, formation, valuation time.Time) []holding {
	var kept []holding
	weightSum := decimal.Zero
	for _, entry := range entries {
		formationClose, okFormation := e.prices.Close(entry.Ticker, formation)
		valuationClose, okValuation := e.prices.Close(entry.Ticker, valuation)
		if !okFormation || !okValuation {
			e.logger.Warn("excluding position with missing price",
				zap.String("ticker", entry.Ticker),
				zap.String("leg", string(leg)),
				zap.String("period", formation.Format(time.DateOnly)))
			continue
		}
		kept = append(kept, holding{
			ticker:         entry.Ticker,
			weight:         entry.Weight,
			formationClose: formationClose,
			valuationClose: valuationClose,
		})
		weightSum = weightSum.Add(entry.Weight)
	}

	if len(kept) == 0 {
		return nil
	}
	for i := range kept {
		kept[i].weight = kept[i].weight.Div(weightSum)
	}
	return kept
}

// legReturn is the weighted mark-to-market return of a leg; an empty leg
// returns 0.
func legReturn(leg []holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range leg {
		r := h.valuationClose.Div(h.formationClose).Sub(decimal.NewFromInt(1))
		total = total.Add(h.weight.Mul(r))
	}
	return total
}

func (e *Engine) benchmarkReturn(formation, valuation time.Time) (decimal.Decimal, error) {
	formationClose, ok := e.prices.Close(e.cfg.BenchmarkTicker, formation)
	if !ok {
		return decimal.Zero, errors.Errorf("benchmark %s has no close on %s",
			e.cfg.BenchmarkTicker, formation.Format(time.DateOnly))
	}
	valuationClose, ok := e.prices.Close(e.cfg.BenchmarkTicker, valuation)
	if !ok {
		return decimal.Zero, errors.Errorf(
			"benchmark %s has no close on %s; each period is valued one week after it forms, so the benchmark file must extend a week past the last period",
			e.cfg.BenchmarkTicker, valuation.Format(time.DateOnly))
	}
	return valuationClose.Div(formationClose).Sub(decimal.NewFromInt(1)), nil
}
