// Package portfolio turns flagged trades into per-period target portfolios.
package portfolio

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gavel-labs/gavel/internal/domain"
)

// Entry one weighted name in a leg of a target portfolio.
type Entry struct {
	// Ticker the held name.
	Ticker string
	// Strength aggregate signal strength: the mean across the period's
	// flagged trades in this (ticker, leg).
	Strength float64
	// Weight leg-normalized share, (0,1]. Weights within a leg sum to 1.
	Weight decimal.Decimal
}

// Target one period's portfolio composition before pricing. Either leg may
// be empty; that is a valid degenerate state, not an error.
type Target struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Long        []Entry
	Short       []Entry
}

// Leg returns the entries of the given leg.
func (t Target) Leg(leg domain.Leg) []Entry {
	if leg == domain.LegShort {
		return t.Short
	}
	return t.Long
}

// Empty reports whether both legs are empty.
func (t Target) Empty() bool {
	return len(t.Long) == 0 && len(t.Short) == 0
}

// Builder aggregates signals into weekly targets.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder returns a builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build buckets signals into the gap-free period sequence covering
// [from, to] and computes leg weights. Signals disclosed outside the range
// are ignored. One Target is returned per period, in chronological order,
// including periods with no qualifying trades.
func (b *Builder) Build(signals []domain.Signal, from, to time.Time) ([]Target, error) {
	ends, err := PeriodEnds(from, to)
	if err != nil {
		return nil, errors.Wrap(err, "build period sequence")
	}

	byPeriod := make(map[time.Time][]domain.Signal)
	skipped := 0
	for _, sig := range signals {
		end := PeriodEnd(sig.Trade.DisclosureDate)
		if end.Before(ends[0]) || end.After(ends[len(ends)-1]) {
			skipped++
			continue
		}
		byPeriod[end] = append(byPeriod[end], sig)
	}
	if skipped > 0 {
		b.logger.Warn("signals disclosed outside the backtest range were ignored", zap.Int("count", skipped))
	}

	targets := make([]Target, 0, len(ends))
	for _, end := range ends {
		targets = append(targets, buildTarget(end, byPeriod[end]))
	}

	return targets, nil
}

type legKey struct {
	ticker string
	leg    domain.Leg
}

func buildTarget(end time.Time, signals []domain.Signal) Target {
	sums := make(map[legKey]float64)
	counts := make(map[legKey]int)
	for _, sig := range signals {
		k := legKey{sig.Trade.Ticker, sig.Leg}
		sums[k] += sig.Strength
		counts[k]++
	}

	strengths := make(map[legKey]float64, len(sums))
	for k, sum := range sums {
		strengths[k] = sum / float64(counts[k])
	}

	// a ticker cannot sit in both legs of one period: the stronger leg keeps
	// it, an exact tie drops the ticker from both
	for k := range strengths {
		if k.leg != domain.LegLong {
			continue
		}
		short := legKey{k.ticker, domain.LegShort}
		shortStrength, contested := strengths[short]
		if !contested {
			continue
		}
		switch {
		case strengths[k] > shortStrength:
			delete(strengths, short)
		case strengths[k] < shortStrength:
			delete(strengths, k)
		default:
			delete(strengths, k)
			delete(strengths, short)
		}
	}

	return Target{
		PeriodStart: PeriodStart(end),
		PeriodEnd:   end,
		Long:        normalizeLeg(strengths, domain.LegLong),
		Short:       normalizeLeg(strengths, domain.LegShort),
	}
}

// normalizeLeg extracts one leg's entries, ordered by ticker, with strengths
// normalized into weights summing to 1. An empty leg yields nil.
func normalizeLeg(strengths map[legKey]float64, leg domain.Leg) []Entry {
	var entries []Entry
	total := 0.0
	for k, s := range strengths {
		if k.leg != leg {
			continue
		}
		entries = append(entries, Entry{Ticker: k.ticker, Strength: s})
		total += s
	}
	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Ticker < entries[j].Ticker })

	totalDec := decimal.NewFromFloat(total)
	for i := range entries {
		entries[i].Weight = decimal.NewFromFloat(entries[i].Strength).Div(totalDec)
	}
	return entries
}
