package reporting

import (
	"encoding/json"
	"fmt"

	"sports-edge-lab/internal/domain"
)

// RenderHeatmapJSON renders one heatmap as an indented JSON envelope:
// {"split": ..., "metric": ..., "entry_thresholds": [...],
// "exit_thresholds": [...], "matrix": [[...]]}. Missing cells serialize
// as null, never as zero.
func RenderHeatmapJSON(h *domain.HeatmapMatrix) ([]byte, error) {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal heatmap: %w", err)
	}
	return data, nil
}

// RenderHeatmapsJSON renders all heatmaps of a report as one JSON array.
func RenderHeatmapsJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r.Heatmaps, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal heatmaps: %w", err)
	}
	return data, nil
}
