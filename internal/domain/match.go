package domain

// Match a scored relationship between one committee and one traded firm.
// Derived fresh each run from the two description texts, never persisted as
// ground truth.
type Match struct {
	// CommitteeID the committee side of the pair.
	CommitteeID string
	// Ticker the firm side of the pair.
	Ticker string
	// Strength similarity of committee subject matter to firm industry,
	// always within [0,1].
	Strength float64
}

// Signal a trade flagged for portfolio inclusion.
type Signal struct {
	// Trade the disclosed trade that produced the signal.
	Trade Trade
	// CommitteeID the committee whose match produced the flag. When several
	// committees tie at the maximum strength the lowest ID wins, so repeated
	// runs pick the same committee.
	CommitteeID string
	// Strength the winning match strength, above the configured threshold.
	Strength float64
	// Leg portfolio leg implied by the trade direction.
	Leg Leg
}
