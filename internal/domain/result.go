package domain

// GameResult summarizes all trades one combination produced for one game.
// Derived, recomputed per (combination, game), never mutated after creation.
type GameResult struct {
	GameID string
	Trades []*Trade

	NetProfitDollars float64
	TradeCount       int
	WinRate          float64
	// ProfitFactor is gross profit over |gross loss|. Nil when there are
	// no losing trades (and when there are no winning trades either).
	ProfitFactor *float64

	InvalidCloses int
	ForcedCloses  int
}

// SplitResult holds one combination's per-game results and aggregate
// metrics over one split.
type SplitResult struct {
	Combination ParameterCombination
	Split       Split
	GameResults []*GameResult

	GameCount        int
	NetProfitDollars float64
	ProfitPerGame    float64
	TradeCount       int
	WinRate          float64
	ProfitFactor     *float64

	FailedGames []string // games whose simulation unit failed after retry
}

// CombinationResult groups one combination's results across all splits.
type CombinationResult struct {
	Combination ParameterCombination
	BySplit     map[Split]*SplitResult
}

// Metric names an aggregate value that can be pivoted into a heatmap.
type Metric string

// Metric constants.
const (
	MetricNetProfit     Metric = "net_profit_dollars"
	MetricProfitPerGame Metric = "profit_per_game"
	MetricTradeCount    Metric = "trade_count"
	MetricWinRate       Metric = "win_rate"
	MetricProfitFactor  Metric = "profit_factor"
)

// AllMetrics lists metrics in canonical report order.
var AllMetrics = []Metric{
	MetricNetProfit,
	MetricProfitPerGame,
	MetricTradeCount,
	MetricWinRate,
	MetricProfitFactor,
}

// MetricValue extracts the named metric from a split result.
// Returns nil when the metric is undefined for this result.
func (r *SplitResult) MetricValue(m Metric) *float64 {
	switch m {
	case MetricNetProfit:
		v := r.NetProfitDollars
		return &v
	case MetricProfitPerGame:
		v := r.ProfitPerGame
		return &v
	case MetricTradeCount:
		v := float64(r.TradeCount)
		return &v
	case MetricWinRate:
		v := r.WinRate
		return &v
	case MetricProfitFactor:
		return r.ProfitFactor
	}
	return nil
}
