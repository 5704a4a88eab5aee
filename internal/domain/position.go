package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Leg the long or short half of a period's portfolio.
type Leg string

const (
	LegLong  Leg = "long"
	LegShort Leg = "short"
)

// Position one held name in one rebalance period.
type Position struct {
	// PeriodStart first day of the rebalance window.
	PeriodStart time.Time
	// PeriodEnd last day of the rebalance window; prices are marked on this day.
	PeriodEnd time.Time
	// Ticker the held name.
	Ticker string
	// Leg which side of the portfolio holds the name.
	Leg Leg
	// Weight share of the leg's capital, (0,1]. Weights within a leg sum to 1.
	Weight decimal.Decimal
	// HoldingSize simulated number of shares, HoldingValue / ClosePrice.
	HoldingSize decimal.Decimal
	// HoldingValue simulated dollar allocation, Weight x leg capital.
	HoldingValue decimal.Decimal
	// ClosePrice period-end close used for the mark.
	ClosePrice decimal.Decimal
}

// NewPosition constructs a validated position row.
func NewPosition(periodStart, periodEnd time.Time, ticker string, leg Leg, weight, closePrice, legCapital decimal.Decimal) (Position, error) {
	if ticker == "" {
		return Position{}, errors.New("position ticker is empty")
	}
	if leg != LegLong && leg != LegShort {
		return Position{}, errors.Errorf("invalid leg %q", leg)
	}
	if weight.LessThanOrEqual(decimal.Zero) || weight.GreaterThan(decimal.NewFromInt(1)) {
		return Position{}, errors.Errorf("position weight %s outside (0,1]", weight)
	}
	if closePrice.LessThanOrEqual(decimal.Zero) {
		return Position{}, errors.Errorf("position close price %s must be positive", closePrice)
	}
	if periodEnd.Before(periodStart) {
		return Position{}, errors.New("position period end before start")
	}

	value := weight.Mul(legCapital)
	return Position{
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		Ticker:       ticker,
		Leg:          leg,
		Weight:       weight,
		HoldingSize:  value.Div(closePrice),
		HoldingValue: value,
		ClosePrice:   closePrice,
	}, nil
}

// WealthPoint one row of the cumulative performance series.
type WealthPoint struct {
	// Date period-end date, strictly increasing across the series.
	Date time.Time
	// Strategy compounded wealth of the long/short portfolio.
	Strategy decimal.Decimal
	// Benchmark compounded wealth of the passive reference index.
	Benchmark decimal.Decimal
}
