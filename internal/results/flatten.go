package results

import (
	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/gridsearch"
)

// ToRecords flattens grid-search output into storable rows, one per
// (combination, split), in grid order.
func ToRecords(runID, season string, res *gridsearch.Results) []*domain.SearchResultRecord {
	var records []*domain.SearchResultRecord
	for _, cr := range res.Combinations {
		for _, split := range domain.Splits {
			sr, ok := cr.BySplit[split]
			if !ok {
				continue
			}
			records = append(records, &domain.SearchResultRecord{
				RunID:            runID,
				Season:           season,
				EntryThreshold:   cr.Combination.EntryThreshold,
				ExitThreshold:    cr.Combination.ExitThreshold,
				Split:            split,
				GameCount:        sr.GameCount,
				NetProfitDollars: sr.NetProfitDollars,
				ProfitPerGame:    sr.ProfitPerGame,
				TradeCount:       sr.TradeCount,
				WinRate:          sr.WinRate,
				ProfitFactor:     sr.ProfitFactor,
			})
		}
	}
	return records
}

// FromRecords reconstructs aggregate-level grid-search results from stored
// rows. Per-game detail is not persisted, so GameResults is empty; selection,
// discrepancy checks and heatmaps only need the aggregates.
func FromRecords(records []*domain.SearchResultRecord) *gridsearch.Results {
	res := &gridsearch.Results{
		ByKey: make(map[string]*domain.CombinationResult),
	}

	for _, rec := range records {
		combo := domain.NewCombination(rec.EntryThreshold, rec.ExitThreshold)
		cr, ok := res.ByKey[combo.Key()]
		if !ok {
			cr = &domain.CombinationResult{
				Combination: combo,
				BySplit:     make(map[domain.Split]*domain.SplitResult),
			}
			res.ByKey[combo.Key()] = cr
			res.Combinations = append(res.Combinations, cr)
		}

		cr.BySplit[rec.Split] = &domain.SplitResult{
			Combination:      combo,
			Split:            rec.Split,
			GameCount:        rec.GameCount,
			NetProfitDollars: rec.NetProfitDollars,
			ProfitPerGame:    rec.ProfitPerGame,
			TradeCount:       rec.TradeCount,
			WinRate:          rec.WinRate,
			ProfitFactor:     rec.ProfitFactor,
		}
	}

	return res
}
