// Package results pivots raw grid-search output into heatmap matrices and
// applies the split-aware selection rule.
package results

import (
	"sort"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/gridsearch"
)

// BuildHeatmap pivots one metric over one split into a 2-D matrix with
// rows = sorted exit thresholds and columns = sorted entry thresholds.
// Missing combinations stay nil; a nil cell is never conflated with zero.
func BuildHeatmap(results *gridsearch.Results, split domain.Split, metric domain.Metric) *domain.HeatmapMatrix {
	entrySet := make(map[float64]struct{})
	exitSet := make(map[float64]struct{})
	for _, cr := range results.Combinations {
		entrySet[cr.Combination.EntryThreshold] = struct{}{}
		exitSet[cr.Combination.ExitThreshold] = struct{}{}
	}

	entries := sortedKeys(entrySet)
	exits := sortedKeys(exitSet)

	entryIdx := make(map[float64]int, len(entries))
	for i, v := range entries {
		entryIdx[v] = i
	}
	exitIdx := make(map[float64]int, len(exits))
	for i, v := range exits {
		exitIdx[v] = i
	}

	matrix := make([][]*float64, len(exits))
	for i := range matrix {
		matrix[i] = make([]*float64, len(entries))
	}

	for _, cr := range results.Combinations {
		sr, ok := cr.BySplit[split]
		if !ok {
			continue
		}
		row := exitIdx[cr.Combination.ExitThreshold]
		col := entryIdx[cr.Combination.EntryThreshold]
		matrix[row][col] = sr.MetricValue(metric)
	}

	return &domain.HeatmapMatrix{
		Split:           split,
		Metric:          metric,
		EntryThresholds: entries,
		ExitThresholds:  exits,
		Matrix:          matrix,
	}
}

func sortedKeys(set map[float64]struct{}) []float64 {
	keys := make([]float64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
