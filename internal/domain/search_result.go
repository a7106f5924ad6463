package domain

// SearchResultRecord is one persisted (combination, split) aggregate from
// a grid-search run. Corresponds to the search_results table in Postgres.
// Rows are append-only; re-running a search produces a new run_id.
type SearchResultRecord struct {
	RunID          string
	Season         string
	EntryThreshold float64
	ExitThreshold  float64
	Split          Split

	GameCount        int
	NetProfitDollars float64
	ProfitPerGame    float64
	TradeCount       int
	WinRate          float64
	ProfitFactor     *float64 // nil when undefined (no losing trades)

	CreatedAt int64 // Unix ms, set by the store backend
}

// CombinationKey returns the canonical threshold key for this record.
func (r *SearchResultRecord) CombinationKey() string {
	return NewCombination(r.EntryThreshold, r.ExitThreshold).Key()
}
