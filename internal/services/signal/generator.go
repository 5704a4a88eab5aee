// Package signal flags disclosed trades whose legislator holds a committee
// seat related to the traded firm's industry.
package signal

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gavel-labs/gavel/internal/domain"
	"github.com/gavel-labs/gavel/internal/journal"
)

type matchSet interface {
	Strength(committeeID, ticker string) (float64, bool)
}

// Generator converts trades into signals using the per-run match set.
type Generator struct {
	roster    *domain.Roster
	matches   matchSet
	threshold float64
	journal   journal.Journal
	logger    *zap.Logger
	runID     string
}

// NewGenerator returns a configured generator. threshold is the minimum
// match strength a trade must exceed (strictly) to be flagged.
func NewGenerator(logger *zap.Logger, roster *domain.Roster, matches matchSet, threshold float64, jrnl journal.Journal, runID string) (*Generator, error) {
	if roster == nil {
		return nil, errors.New("roster is required")
	}
	if matches == nil {
		return nil, errors.New("match set is required")
	}
	if threshold < 0 || threshold >= 1 {
		return nil, errors.Errorf("threshold %f outside [0,1)", threshold)
	}
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		roster:    roster,
		matches:   matches,
		threshold: threshold,
		journal:   jrnl,
		logger:    logger,
		runID:     runID,
	}, nil
}

// Evaluate decides whether one trade is flagged. The decision is recorded to
// the audit journal either way. ok is false for unflagged trades.
func (g *Generator) Evaluate(trade domain.Trade) (sig domain.Signal, ok bool, err error) {
	legislator, found := g.roster.Legislator(trade.LegislatorID)
	if !found {
		return domain.Signal{}, false, g.record(trade, domain.Signal{}, journal.ReasonUnknownLegislator)
	}
	if len(legislator.CommitteeIDs) == 0 {
		return domain.Signal{}, false, g.record(trade, domain.Signal{}, journal.ReasonNoCommittees)
	}

	// ascending committee order plus a strict comparison makes the lowest
	// committee id win exact ties, so reruns always pick the same committee
	committeeIDs := append([]string(nil), legislator.CommitteeIDs...)
	sort.Strings(committeeIDs)

	best := domain.Signal{Trade: trade, Leg: trade.Direction.Leg()}
	for _, cid := range committeeIDs {
		strength, found := g.matches.Strength(cid, trade.Ticker)
		if !found {
			continue
		}
		if best.CommitteeID == "" || strength > best.Strength {
			best.CommitteeID = cid
			best.Strength = strength
		}
	}

	if best.CommitteeID == "" || best.Strength <= g.threshold {
		return domain.Signal{}, false, g.record(trade, best, journal.ReasonBelowThreshold)
	}

	return best, true, g.record(trade, best, journal.ReasonFlagged)
}

// Flag evaluates trades in order and returns the flagged subset. Unflagged
// trades are dropped here but remain visible in the audit journal.
func (g *Generator) Flag(trades []domain.Trade) ([]domain.Signal, error) {
	signals := make([]domain.Signal, 0, len(trades))
	for _, trade := range trades {
		sig, ok, err := g.Evaluate(trade)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate trade %s", trade)
		}
		if ok {
			signals = append(signals, sig)
		}
	}

	g.logger.Info("flagged trades",
		zap.Int("evaluated", len(trades)),
		zap.Int("flagged", len(signals)))

	return signals, nil
}

func (g *Generator) record(trade domain.Trade, sig domain.Signal, reason string) error {
	d := journal.Decision{
		RunID:          g.runID,
		LegislatorID:   trade.LegislatorID,
		Ticker:         trade.Ticker,
		Direction:      string(trade.Direction),
		Size:           trade.Size.String(),
		SizeMidpoint:   trade.Size.Midpoint(),
		DisclosureDate: trade.DisclosureDate,
		Flagged:        reason == journal.ReasonFlagged,
		Strength:       sig.Strength,
		Reason:         reason,
	}
	if d.Flagged {
		d.CommitteeID = sig.CommitteeID
	}
	return errors.Wrap(g.journal.RecordDecision(d), "record decision")
}
