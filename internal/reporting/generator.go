package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"sports-edge-lab/internal/cache"
	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/gridsearch"
	"sports-edge-lab/internal/results"
	"sports-edge-lab/internal/storage"
)

// Generator produces reports from stored search results.
type Generator struct {
	resultStore storage.SearchResultStore
	records     *cache.Cache[[]*domain.SearchResultRecord]
	now         func() time.Time // Injectable clock for deterministic output

	shortlist    int
	maxRatio     float64
	selectMetric domain.Metric
}

// NewGenerator creates a new report generator.
func NewGenerator(resultStore storage.SearchResultStore) *Generator {
	return &Generator{
		resultStore:  resultStore,
		records:      cache.New[[]*domain.SearchResultRecord](),
		now:          func() time.Time { return time.Now().UTC() },
		shortlist:    results.DefaultShortlist,
		maxRatio:     results.DefaultDiscrepancyRatio,
		selectMetric: domain.MetricProfitPerGame,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithSelection overrides the selection metric and shortlist size.
func (g *Generator) WithSelection(metric domain.Metric, shortlist int) *Generator {
	g.selectMetric = metric
	if shortlist > 0 {
		g.shortlist = shortlist
	}
	return g
}

// InvalidateAfterSimulation drops cached records after a new run stored
// results. Returns how many cached runs were evicted.
func (g *Generator) InvalidateAfterSimulation() int {
	return g.records.Fire(cache.OnSimulationComplete)
}

// Generate produces a complete report for one stored run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	records, err := g.loadRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, storage.ErrNotFound)
	}

	res := results.FromRecords(records)

	report := &Report{
		GeneratedAt:  g.now(),
		RunID:        runID,
		Season:       records[0].Season,
		GameCounts:   gameCounts(res),
		Combinations: combinationRows(res),
	}

	best, err := results.SelectBest(res, g.selectMetric, g.shortlist)
	if err != nil {
		report.SelectionNote = fmt.Sprintf("no combination selected: %v", err)
	} else {
		report.Best = &best
		if cr, ok := res.ByKey[best.Key()]; ok {
			if sr, ok := cr.BySplit[domain.SplitTest]; ok {
				report.BestTestResult = splitCell(sr)
			}
		}
	}

	for _, d := range results.CheckDiscrepancies(res.Combinations, g.maxRatio) {
		report.Discrepancies = append(report.Discrepancies, DiscrepancyRow{
			EntryThreshold:     d.Combination.EntryThreshold,
			ExitThreshold:      d.Combination.ExitThreshold,
			TrainProfitPerGame: d.TrainProfitPerGame,
			ValidProfitPerGame: d.ValidProfitPerGame,
			Ratio:              d.Ratio,
		})
	}

	for _, split := range domain.Splits {
		for _, metric := range domain.AllMetrics {
			report.Heatmaps = append(report.Heatmaps, results.BuildHeatmap(res, split, metric))
		}
	}

	return report, nil
}

// loadRecords is the cached read path. Entries go stale only when a new
// simulation stores results.
func (g *Generator) loadRecords(ctx context.Context, runID string) ([]*domain.SearchResultRecord, error) {
	return g.records.GetOrLoad(ctx, runID, []cache.Trigger{cache.OnSimulationComplete},
		func(ctx context.Context) ([]*domain.SearchResultRecord, error) {
			return g.resultStore.GetByRunID(ctx, runID)
		})
}

func gameCounts(res *gridsearch.Results) map[domain.Split]int {
	counts := make(map[domain.Split]int)
	for _, cr := range res.Combinations {
		for split, sr := range cr.BySplit {
			if sr.GameCount > counts[split] {
				counts[split] = sr.GameCount
			}
		}
	}
	return counts
}

func combinationRows(res *gridsearch.Results) []CombinationRow {
	rows := make([]CombinationRow, 0, len(res.Combinations))
	for _, cr := range res.Combinations {
		row := CombinationRow{
			EntryThreshold: cr.Combination.EntryThreshold,
			ExitThreshold:  cr.Combination.ExitThreshold,
			BySplit:        make(map[domain.Split]*CombinationSplitCell, len(cr.BySplit)),
		}
		for split, sr := range cr.BySplit {
			row.BySplit[split] = splitCell(sr)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ExitThreshold != rows[j].ExitThreshold {
			return rows[i].ExitThreshold < rows[j].ExitThreshold
		}
		return rows[i].EntryThreshold < rows[j].EntryThreshold
	})

	return rows
}

func splitCell(sr *domain.SplitResult) *CombinationSplitCell {
	cell := &CombinationSplitCell{
		GameCount:        sr.GameCount,
		NetProfitDollars: sr.NetProfitDollars,
		ProfitPerGame:    sr.ProfitPerGame,
		TradeCount:       sr.TradeCount,
		WinRate:          sr.WinRate,
	}
	if sr.ProfitFactor != nil && !math.IsNaN(*sr.ProfitFactor) {
		pf := *sr.ProfitFactor
		cell.ProfitFactor = &pf
	}
	return cell
}
