package domain

// Side of a position relative to the home-win contract.
type Side string

// Side constants.
const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// CloseReason records why a position was closed.
type CloseReason string

// Close reason constants.
const (
	// CloseNatural means divergence decayed below the exit threshold.
	CloseNatural CloseReason = "natural"
	// CloseForced means the game ended with the position still open;
	// a fixed slippage penalty applies to the exit price.
	CloseForced CloseReason = "forced"
	// CloseInvalid means entry or exit price data was missing or
	// degenerate; P&L is forced to exactly zero.
	CloseInvalid CloseReason = "invalid"
)

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

// Position status constants.
const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position is a synthetic position in the home-win contract. Created on an
// entry signal, mutated only to close it, never reopened.
type Position struct {
	GameID     string
	Side       Side
	EntrySeq   int
	EntryTime  int64
	EntryPrice float64
	Contracts  float64
	Status     PositionStatus

	ExitSeq     int
	ExitTime    int64
	ExitPrice   float64
	CloseReason CloseReason
}

// Trade is the immutable closed form of a Position plus computed signed P&L.
type Trade struct {
	TradeID string // deterministic hash
	GameID  string

	Side       Side
	Contracts  float64
	EntrySeq   int
	EntryTime  int64
	EntryPrice float64
	ExitSeq    int
	ExitTime   int64
	ExitPrice  float64

	CloseReason CloseReason
	PnLDollars  float64 // signed, exactly 0 for invalid closes
}

// PriceTradable reports whether p is usable as a trade price.
// Degenerate fallback values of 0 and 1 are not tradable.
func PriceTradable(p float64) bool {
	return p > 0 && p < 1
}
