package reporting

import (
	"time"

	"sports-edge-lab/internal/domain"
)

// Report is the full output of one grid-search run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Season      string

	// Per-split game counts, taken from the stored aggregates.
	GameCounts map[domain.Split]int

	// Combination table (grid order: exit ASC, then entry ASC)
	Combinations []CombinationRow

	// Selection
	Best           *domain.ParameterCombination
	SelectionNote  string // non-empty when no combination was selectable
	BestTestResult *CombinationSplitCell

	// Train/valid divergence warnings
	Discrepancies []DiscrepancyRow

	// Heatmaps, one per (split, metric)
	Heatmaps []*domain.HeatmapMatrix
}

// CombinationRow is one combination across all splits.
type CombinationRow struct {
	EntryThreshold float64
	ExitThreshold  float64
	BySplit        map[domain.Split]*CombinationSplitCell
}

// CombinationSplitCell holds one combination's aggregates on one split.
type CombinationSplitCell struct {
	GameCount        int
	NetProfitDollars float64
	ProfitPerGame    float64
	TradeCount       int
	WinRate          float64
	ProfitFactor     *float64
}

// DiscrepancyRow is one flagged train/valid divergence.
type DiscrepancyRow struct {
	EntryThreshold     float64
	ExitThreshold      float64
	TrainProfitPerGame float64
	ValidProfitPerGame float64
	Ratio              float64
}
