package results

import (
	"testing"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/gridsearch"
)

// makeResults synthesizes grid-search output from (entry, exit, per-split
// profit-per-game, trade counts) tuples.
type comboSpec struct {
	entry, exit float64
	trainPPG    float64
	validPPG    float64
	testTrades  int
}

func makeResults(specs []comboSpec) *gridsearch.Results {
	out := &gridsearch.Results{ByKey: make(map[string]*domain.CombinationResult)}
	for _, s := range specs {
		combo := domain.NewCombination(s.entry, s.exit)
		cr := &domain.CombinationResult{
			Combination: combo,
			BySplit: map[domain.Split]*domain.SplitResult{
				domain.SplitTrain: {
					Combination: combo, Split: domain.SplitTrain,
					GameCount: 10, ProfitPerGame: s.trainPPG, NetProfitDollars: s.trainPPG * 10, TradeCount: 20,
				},
				domain.SplitValid: {
					Combination: combo, Split: domain.SplitValid,
					GameCount: 5, ProfitPerGame: s.validPPG, NetProfitDollars: s.validPPG * 5, TradeCount: 10,
				},
				domain.SplitTest: {
					Combination: combo, Split: domain.SplitTest,
					GameCount: 5, TradeCount: s.testTrades,
				},
			},
		}
		out.Combinations = append(out.Combinations, cr)
		out.ByKey[combo.Key()] = cr
	}
	return out
}

func TestBuildHeatmap_Dimensions(t *testing.T) {
	// Full 3×2 grid.
	results := makeResults([]comboSpec{
		{0.10, 0.02, 1, 1, 1}, {0.15, 0.02, 2, 2, 1}, {0.20, 0.02, 3, 3, 1},
		{0.10, 0.04, 4, 4, 1}, {0.15, 0.04, 5, 5, 1}, {0.20, 0.04, 6, 6, 1},
	})

	h := BuildHeatmap(results, domain.SplitTrain, domain.MetricProfitPerGame)

	if len(h.ExitThresholds) != 2 || len(h.EntryThresholds) != 3 {
		t.Fatalf("axes = %d exits × %d entries, want 2 × 3", len(h.ExitThresholds), len(h.EntryThresholds))
	}
	cells := 0
	for _, row := range h.Matrix {
		cells += len(row)
	}
	if cells != 6 {
		t.Errorf("matrix has %d cells, want exactly 6", cells)
	}

	// Axes sorted ascending.
	if h.EntryThresholds[0] != 0.10 || h.EntryThresholds[2] != 0.20 {
		t.Errorf("entry axis not sorted: %v", h.EntryThresholds)
	}
	if h.ExitThresholds[0] != 0.02 || h.ExitThresholds[1] != 0.04 {
		t.Errorf("exit axis not sorted: %v", h.ExitThresholds)
	}

	// Spot-check orientation: row = exit, column = entry.
	if v := h.Cell(1, 2); v == nil || *v != 6 {
		t.Errorf("cell(exit=0.04, entry=0.20) = %v, want 6", v)
	}
}

func TestBuildHeatmap_MissingCellsAreNil(t *testing.T) {
	// 2×2 axes but only 3 combinations present.
	results := makeResults([]comboSpec{
		{0.10, 0.02, 1, 1, 1},
		{0.15, 0.02, 2, 2, 1},
		{0.15, 0.04, 3, 3, 1},
	})

	h := BuildHeatmap(results, domain.SplitTrain, domain.MetricProfitPerGame)

	if hole := h.Cell(1, 0); hole != nil {
		t.Errorf("missing combination cell = %v, want nil (never zero)", *hole)
	}
	if v := h.Cell(0, 0); v == nil || *v != 1 {
		t.Errorf("present cell lost: %v", v)
	}
}

func TestBuildHeatmap_NilMetricStaysNil(t *testing.T) {
	// Profit factor undefined (no losing trades) must pivot to nil.
	results := makeResults([]comboSpec{{0.10, 0.02, 1, 1, 1}})

	h := BuildHeatmap(results, domain.SplitTrain, domain.MetricProfitFactor)
	if v := h.Cell(0, 0); v != nil {
		t.Errorf("undefined profit factor cell = %v, want nil", *v)
	}
}
