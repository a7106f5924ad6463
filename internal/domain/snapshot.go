package domain

// Snapshot is one aligned observation of model estimate, market quote and
// game state. Immutable once produced by the aligner.
type Snapshot struct {
	GameID      string
	Sequence    int   // position in the aligned sequence, starting at 0
	TimestampMs int64 // model timestamp the row was aligned to

	ProbHome float64 // model P(home wins)

	Bid        float64 // carried-forward best bid, 0 when never quoted
	Ask        float64 // carried-forward best ask, 0 when never quoted
	QuoteAgeMs int64   // staleness of the carried quote at this timestamp
	PriceValid bool    // false when quotes are absent or too stale to trade

	PointDiff     int
	SecondsLeft   float64
	HomePossesses bool
}

// Mid returns the quote midpoint, or 0 when either side is missing.
func (s *Snapshot) Mid() float64 {
	if s.Bid <= 0 || s.Ask <= 0 {
		return 0
	}
	return (s.Bid + s.Ask) / 2
}
