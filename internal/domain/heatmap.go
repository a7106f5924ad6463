package domain

// HeatmapMatrix is a 2-D pivot of one metric over the parameter grid.
// Rows are sorted exit thresholds, columns sorted entry thresholds.
// A nil cell means the combination is missing, which is distinct from zero.
type HeatmapMatrix struct {
	Split           Split        `json:"split"`
	Metric          Metric       `json:"metric"`
	EntryThresholds []float64    `json:"entry_thresholds"`
	ExitThresholds  []float64    `json:"exit_thresholds"`
	Matrix          [][]*float64 `json:"matrix"`
}

// Cell returns the value at (exitIdx, entryIdx), nil when missing.
func (h *HeatmapMatrix) Cell(exitIdx, entryIdx int) *float64 {
	if exitIdx < 0 || exitIdx >= len(h.Matrix) {
		return nil
	}
	row := h.Matrix[exitIdx]
	if entryIdx < 0 || entryIdx >= len(row) {
		return nil
	}
	return row[entryIdx]
}
