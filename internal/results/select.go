package results

import (
	"errors"
	"sort"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/gridsearch"
)

// ErrNoCandidates is returned when selection has nothing to choose from.
var ErrNoCandidates = errors.New("no combinations with usable train and validation results")

// DefaultShortlist is the train-metric shortlist size used by SelectBest
// when the caller passes topN <= 0.
const DefaultShortlist = 10

// SelectBest picks the parameter combination to carry forward.
//
// Ranking purely on the train split lets an overfit combination win, so
// selection is two-stage: shortlist the topN combinations by train metric,
// then take the shortlisted combination with the best validation metric.
// Deterministic tie-break: higher test-split trade count first, then the
// smaller |exit − entry| gap, then the combination key.
func SelectBest(results *gridsearch.Results, metric domain.Metric, topN int) (domain.ParameterCombination, error) {
	if topN <= 0 {
		topN = DefaultShortlist
	}

	type candidate struct {
		combo    domain.ParameterCombination
		train    float64
		valid    float64
		testSize int
	}

	var candidates []candidate
	for _, cr := range results.Combinations {
		trainVal := splitMetric(cr, domain.SplitTrain, metric)
		validVal := splitMetric(cr, domain.SplitValid, metric)
		if trainVal == nil || validVal == nil {
			continue // metric undefined on a ranking split
		}
		testSize := 0
		if sr, ok := cr.BySplit[domain.SplitTest]; ok {
			testSize = sr.TradeCount
		}
		candidates = append(candidates, candidate{
			combo:    cr.Combination,
			train:    *trainVal,
			valid:    *validVal,
			testSize: testSize,
		})
	}
	if len(candidates) == 0 {
		return domain.ParameterCombination{}, ErrNoCandidates
	}

	// Stage 1: shortlist by train metric. Key order makes equal train
	// values deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].train != candidates[j].train {
			return candidates[i].train > candidates[j].train
		}
		return candidates[i].combo.Key() < candidates[j].combo.Key()
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	// Stage 2: best validation metric among the shortlist.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.valid != b.valid {
			return a.valid > b.valid
		}
		if a.testSize != b.testSize {
			return a.testSize > b.testSize
		}
		if a.combo.Gap() != b.combo.Gap() {
			return a.combo.Gap() < b.combo.Gap()
		}
		return a.combo.Key() < b.combo.Key()
	})

	return candidates[0].combo, nil
}

func splitMetric(cr *domain.CombinationResult, split domain.Split, metric domain.Metric) *float64 {
	sr, ok := cr.BySplit[split]
	if !ok {
		return nil
	}
	return sr.MetricValue(metric)
}
