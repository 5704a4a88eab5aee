// Package domain defines core data structures used throughout the backtester.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TradeDirection disclosed direction of a trade.
type TradeDirection string

const (
	// TradeDirectionBuy purchase of the security.
	TradeDirectionBuy TradeDirection = "buy"
	// TradeDirectionSell disposal of the security.
	TradeDirectionSell TradeDirection = "sell"
)

// ParseTradeDirection normalizes a raw direction string from a disclosure
// feed. Exchanges and receives show up in the raw data too; they are not
// supported and yield an error so the caller can drop the record.
func ParseTradeDirection(s string) (TradeDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return TradeDirectionBuy, nil
	case "sell":
		return TradeDirectionSell, nil
	}
	return "", fmt.Errorf("unsupported trade direction %q", s)
}

// Leg returns the portfolio leg implied by the direction.
func (d TradeDirection) Leg() Leg {
	if d == TradeDirectionSell {
		return LegShort
	}
	return LegLong
}

// TradeOwner who the disclosed trade belongs to.
type TradeOwner string

const (
	TradeOwnerSelf      TradeOwner = "self"
	TradeOwnerSpouse    TradeOwner = "spouse"
	TradeOwnerChild     TradeOwner = "child"
	TradeOwnerJoint     TradeOwner = "joint"
	TradeOwnerUndefined TradeOwner = "undisclosed"
)

// ParseTradeOwner normalizes a raw owner string. Unknown owners map to
// undisclosed rather than failing; owner only matters for filtering.
func ParseTradeOwner(s string) TradeOwner {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "self":
		return TradeOwnerSelf
	case "spouse":
		return TradeOwnerSpouse
	case "child":
		return TradeOwnerChild
	case "joint":
		return TradeOwnerJoint
	}
	return TradeOwnerUndefined
}

// Trade a single disclosed transaction. Immutable once loaded.
type Trade struct {
	// LegislatorID identifies the trading legislator.
	LegislatorID string
	// Ticker exchange symbol of the traded firm.
	Ticker string
	// TransactionDate day the trade was executed.
	TransactionDate time.Time
	// DisclosureDate day the trade became public. Never before TransactionDate.
	DisclosureDate time.Time
	// Direction buy or sell.
	Direction TradeDirection
	// Owner whose account the trade was made in.
	Owner TradeOwner
	// Size disclosed dollar-size bucket.
	Size SizeBucket
}

// NewTrade constructs a validated trade.
func NewTrade(legislatorID, ticker string, transacted, disclosed time.Time, direction TradeDirection, owner TradeOwner, size SizeBucket) (Trade, error) {
	if legislatorID == "" {
		return Trade{}, errors.New("trade legislator id is empty")
	}
	if ticker == "" {
		return Trade{}, errors.New("trade ticker is empty")
	}
	if transacted.IsZero() || disclosed.IsZero() {
		return Trade{}, errors.New("trade dates must be set")
	}
	if disclosed.Before(transacted) {
		return Trade{}, errors.Errorf("trade disclosed %s before transaction %s",
			disclosed.Format(time.DateOnly), transacted.Format(time.DateOnly))
	}

	return Trade{
		LegislatorID:    legislatorID,
		Ticker:          ticker,
		TransactionDate: transacted,
		DisclosureDate:  disclosed,
		Direction:       direction,
		Owner:           owner,
		Size:            size,
	}, nil
}

// String returns a human-readable representation.
func (t Trade) String() string {
	return fmt.Sprintf("%s %s %s disclosed %s", t.LegislatorID, t.Direction, t.Ticker, t.DisclosureDate.Format(time.DateOnly))
}
