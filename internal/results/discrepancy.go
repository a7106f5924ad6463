package results

import (
	"math"

	"sports-edge-lab/internal/domain"
)

// DefaultDiscrepancyRatio is the profit-per-game ratio beyond which a
// combination is reported as train/valid divergent.
const DefaultDiscrepancyRatio = 3.0

// Discrepancy describes a train/valid divergence for one combination.
// Comparison is always on profit-per-game: splits hold different numbers
// of games, so raw summed dollars across splits flag spurious overfitting.
type Discrepancy struct {
	Combination        domain.ParameterCombination
	TrainProfitPerGame float64
	ValidProfitPerGame float64
	Ratio              float64
}

// CheckDiscrepancies reports combinations whose per-game train profit
// exceeds per-game validation profit by more than maxRatio. Combinations
// that are unprofitable per-game on train are skipped: a strategy that
// loses in-sample is not overfit, just bad.
func CheckDiscrepancies(combos []*domain.CombinationResult, maxRatio float64) []Discrepancy {
	if maxRatio <= 0 {
		maxRatio = DefaultDiscrepancyRatio
	}

	var out []Discrepancy
	for _, cr := range combos {
		train, okTrain := cr.BySplit[domain.SplitTrain]
		valid, okValid := cr.BySplit[domain.SplitValid]
		if !okTrain || !okValid || train.GameCount == 0 || valid.GameCount == 0 {
			continue
		}
		if train.ProfitPerGame <= 0 {
			continue
		}

		ratio := ratioOf(train.ProfitPerGame, valid.ProfitPerGame)
		if ratio > maxRatio {
			out = append(out, Discrepancy{
				Combination:        cr.Combination,
				TrainProfitPerGame: train.ProfitPerGame,
				ValidProfitPerGame: valid.ProfitPerGame,
				Ratio:              ratio,
			})
		}
	}
	return out
}

// ratioOf compares per-game profits. A non-positive validation profit
// against a positive train profit is unbounded divergence.
func ratioOf(train, valid float64) float64 {
	if valid <= 0 {
		return math.Inf(1)
	}
	return train / valid
}
