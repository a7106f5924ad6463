package domain

// ModelProbPoint is one calibrated win-probability estimate from the
// upstream model, with the feature snapshot that produced it.
// Corresponds to the model_prob_timeseries table in ClickHouse.
type ModelProbPoint struct {
	GameID        string
	TimestampMs   int64   // Unix timestamp in milliseconds
	Sequence      int     // per-game monotonic sequence number
	ProbHome      float64 // calibrated P(home wins), in (0,1)
	PointDiff     int     // home minus away at this instant
	SecondsLeft   float64 // game clock remaining
	HomePossesses bool    // possession indicator from the feature snapshot
}

// MarketQuotePoint is one bid/ask observation for the home-win contract.
// Corresponds to the market_quote_timeseries table in ClickHouse.
type MarketQuotePoint struct {
	GameID      string
	TimestampMs int64
	Bid         float64 // best bid, contract price in (0,1); 0 when absent
	Ask         float64 // best ask, contract price in (0,1); 0 when absent
	AwayBid     float64 // away-side quotes, used for overround checks
	AwayAsk     float64
}

// GameStatePoint is one clock/score observation from the game metadata feed.
// Corresponds to the game_state_timeseries table in ClickHouse.
type GameStatePoint struct {
	GameID        string
	TimestampMs   int64
	PointDiff     int
	SecondsLeft   float64
	HomePossesses bool
}
