// Package journal persists the audit trail of signal decisions: one record
// per evaluated trade, flagged or not, so every portfolio inclusion can be
// traced back to the committee match that caused it.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision the outcome of evaluating one disclosed trade against the match
// set.
type Decision struct {
	// RunID identifies the backtest run the decision belongs to.
	RunID string
	// LegislatorID the trading legislator.
	LegislatorID string
	// Ticker the traded firm.
	Ticker string
	// Direction buy or sell.
	Direction string
	// Size disclosed dollar-size bucket, as reported in the feed.
	Size string
	// SizeMidpoint assumed dollar amount, the midpoint of the bucket.
	SizeMidpoint decimal.Decimal
	// DisclosureDate when the trade became public.
	DisclosureDate time.Time
	// Flagged whether the trade entered portfolio construction.
	Flagged bool
	// CommitteeID the winning committee when flagged, empty otherwise.
	CommitteeID string
	// Strength the winning match strength, 0 when no match existed.
	Strength float64
	// Reason machine-readable decision reason.
	Reason string
}

// Decision reasons.
const (
	ReasonFlagged           = "flagged"
	ReasonBelowThreshold    = "below_threshold"
	ReasonUnknownLegislator = "unknown_legislator"
	ReasonNoCommittees      = "no_committees"
)

// Journal records signal decisions for one run. Append-only.
type Journal interface {
	RecordDecision(Decision) error
	Close() error
}

// Nop discards every record. Used when auditing is disabled.
type Nop struct{}

func (Nop) RecordDecision(Decision) error { return nil }
func (Nop) Close() error                  { return nil }
