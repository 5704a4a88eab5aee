package backtest

import (
	"math"

	"github.com/gavel-labs/gavel/internal/domain"
)

// Summary descriptive performance figures over a finished run.
type Summary struct {
	TotalReturn          float64
	BenchmarkTotalReturn float64
	// ExcessReturn strategy total return minus benchmark total return.
	ExcessReturn float64
	// CAGR annualized growth rate; zero when the run spans less than a day.
	CAGR float64
	// MaxDrawdown largest peak-to-trough loss as a fraction, reported >= 0.
	MaxDrawdown float64
	Periods     int
}

func summarize(wealth []domain.WealthPoint) Summary {
	if len(wealth) < 2 {
		return Summary{}
	}

	first := wealth[0]
	last := wealth[len(wealth)-1]

	s := Summary{Periods: len(wealth) - 1}

	initial, _ := first.Strategy.Float64()
	final, _ := last.Strategy.Float64()
	benchInitial, _ := first.Benchmark.Float64()
	benchFinal, _ := last.Benchmark.Float64()

	s.TotalReturn = final/initial - 1
	s.BenchmarkTotalReturn = benchFinal/benchInitial - 1
	s.ExcessReturn = s.TotalReturn - s.BenchmarkTotalReturn

	years := last.Date.Sub(first.Date).Hours() / (24 * 365.25)
	if years > 0 {
		s.CAGR = math.Pow(final/initial, 1/years) - 1
	}

	peak := initial
	for _, point := range wealth {
		v, _ := point.Strategy.Float64()
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	return s
}
