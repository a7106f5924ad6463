package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage/memory"
)

func setupTestData(t *testing.T) *memory.SearchResultStore {
	ctx := context.Background()
	store := memory.NewSearchResultStore()

	record := func(entry, exit float64, split domain.Split, gameCount int, ppg float64, trades int) *domain.SearchResultRecord {
		return &domain.SearchResultRecord{
			RunID:            "run1",
			Season:           "2023-24",
			EntryThreshold:   entry,
			ExitThreshold:    exit,
			Split:            split,
			GameCount:        gameCount,
			NetProfitDollars: ppg * float64(gameCount),
			ProfitPerGame:    ppg,
			TradeCount:       trades,
			WinRate:          0.55,
		}
	}

	records := []*domain.SearchResultRecord{
		// Balanced combination, should be selected.
		record(0.15, 0.03, domain.SplitTrain, 100, 5.0, 250),
		record(0.15, 0.03, domain.SplitValid, 50, 4.0, 120),
		record(0.15, 0.03, domain.SplitTest, 50, 3.5, 110),
		// Overfit combination: great train, collapses on valid.
		record(0.10, 0.03, domain.SplitTrain, 100, 9.0, 400),
		record(0.10, 0.03, domain.SplitValid, 50, 0.5, 180),
		record(0.10, 0.03, domain.SplitTest, 50, 0.2, 170),
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	return store
}

func TestGenerator_Generate(t *testing.T) {
	store := setupTestData(t)

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(store).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(context.Background(), "run1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want injected clock value", report.GeneratedAt)
	}
	if report.Season != "2023-24" {
		t.Errorf("Season = %s, want 2023-24", report.Season)
	}
	if report.GameCounts[domain.SplitTrain] != 100 || report.GameCounts[domain.SplitTest] != 50 {
		t.Errorf("GameCounts = %v", report.GameCounts)
	}
	if len(report.Combinations) != 2 {
		t.Fatalf("got %d combination rows, want 2", len(report.Combinations))
	}

	// Validation-stage selection must reject the overfit train champion.
	if report.Best == nil {
		t.Fatalf("no combination selected: %s", report.SelectionNote)
	}
	if report.Best.EntryThreshold != 0.15 {
		t.Errorf("Best.EntryThreshold = %.4f, want 0.15", report.Best.EntryThreshold)
	}
	if report.BestTestResult == nil || report.BestTestResult.ProfitPerGame != 3.5 {
		t.Errorf("BestTestResult = %+v, want test profit 3.5 per game", report.BestTestResult)
	}

	// 9.0 / 0.5 = 18x exceeds the default ratio of 3.
	if len(report.Discrepancies) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(report.Discrepancies))
	}
	if report.Discrepancies[0].EntryThreshold != 0.10 {
		t.Errorf("Discrepancy entry = %.4f, want 0.10", report.Discrepancies[0].EntryThreshold)
	}

	// One heatmap per (split, metric).
	want := len(domain.Splits) * len(domain.AllMetrics)
	if len(report.Heatmaps) != want {
		t.Errorf("got %d heatmaps, want %d", len(report.Heatmaps), want)
	}
}

func TestGenerator_UnknownRun(t *testing.T) {
	gen := NewGenerator(memory.NewSearchResultStore())

	_, err := gen.Generate(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestGenerator_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store := setupTestData(t)
	gen := NewGenerator(store)

	if _, err := gen.Generate(ctx, "run1"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// The first Generate populated the record cache; a new simulation
	// must evict it.
	if evicted := gen.InvalidateAfterSimulation(); evicted != 1 {
		t.Errorf("evicted %d cached runs, want 1", evicted)
	}
	if evicted := gen.InvalidateAfterSimulation(); evicted != 0 {
		t.Errorf("second invalidation evicted %d, want 0", evicted)
	}
}

func TestRenderMarkdown(t *testing.T) {
	store := setupTestData(t)
	gen := NewGenerator(store)

	report, err := gen.Generate(context.Background(), "run1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Grid Search Report",
		"Run: run1 | Season: 2023-24",
		"## Selected Combination",
		"Entry 0.1500 / Exit 0.0300",
		"## Train/Valid Discrepancies",
		"| 0.1000 | 0.0300 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	store := setupTestData(t)
	gen := NewGenerator(store)

	report, err := gen.Generate(context.Background(), "run1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	csv := RenderCSV(report.Combinations)
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	// Header plus one row per (combination, split).
	if len(lines) != 1+6 {
		t.Fatalf("got %d CSV lines, want 7", len(lines))
	}
	if !strings.HasPrefix(lines[0], "entry_threshold,exit_threshold,split,") {
		t.Errorf("unexpected CSV header: %s", lines[0])
	}
	// Undefined profit factor renders as trailing empty cell.
	if !strings.HasSuffix(lines[1], ",") {
		t.Errorf("expected empty profit_factor cell, got %s", lines[1])
	}
}

func TestRenderHeatmapJSON(t *testing.T) {
	store := setupTestData(t)
	gen := NewGenerator(store)

	report, err := gen.Generate(context.Background(), "run1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := RenderHeatmapJSON(report.Heatmaps[0])
	if err != nil {
		t.Fatalf("RenderHeatmapJSON failed: %v", err)
	}

	for _, want := range []string{`"split"`, `"metric"`, `"entry_thresholds"`, `"exit_thresholds"`, `"matrix"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON envelope missing %s", want)
		}
	}
}
