// Package orchestrator provides E2E pipeline orchestration.
// It coordinates: loading → alignment → grid search → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"sports-edge-lab/internal/align"
	"sports-edge-lab/internal/diag"
	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/gridsearch"
	"sports-edge-lab/internal/idhash"
	"sports-edge-lab/internal/observability"
	"sports-edge-lab/internal/results"
	"sports-edge-lab/internal/sim"
	"sports-edge-lab/internal/storage"
)

// Orchestrator coordinates the E2E pipeline execution.
// Flow: load games → align timeseries → grid search → persist results
type Orchestrator struct {
	// Stores
	gameStore         storage.GameStore
	splitStore        storage.SplitStore
	probStore         storage.ProbTimeseriesStore
	quoteStore        storage.QuoteTimeseriesStore
	stateStore        storage.StateTimeseriesStore
	searchResultStore storage.SearchResultStore

	// Grid configuration
	season     string
	entryRange gridsearch.ThresholdRange
	exitRange  gridsearch.ThresholdRange

	// Runtime configuration
	workers         int
	unitTimeout     time.Duration
	expectedRunTime time.Duration
	alignConfig     align.Config
	simConfig       sim.Config

	// Options
	dryRun  bool
	verbose bool

	recorder *diag.Recorder
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	GameStore         storage.GameStore
	SplitStore        storage.SplitStore
	ProbStore         storage.ProbTimeseriesStore
	QuoteStore        storage.QuoteTimeseriesStore
	StateStore        storage.StateTimeseriesStore
	SearchResultStore storage.SearchResultStore

	// Grid configuration
	Season     string
	EntryRange gridsearch.ThresholdRange
	ExitRange  gridsearch.ThresholdRange

	// Runtime configuration
	Workers     int
	UnitTimeout time.Duration
	// ExpectedRunDuration is the whole-run duration beyond which the run
	// is tallied as over time. An operational warning, never a failure;
	// zero disables the check.
	ExpectedRunDuration time.Duration
	AlignConfig         align.Config
	SimConfig           sim.Config

	// Options
	DryRun  bool // Run the search without persisting results
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		gameStore:         opts.GameStore,
		splitStore:        opts.SplitStore,
		probStore:         opts.ProbStore,
		quoteStore:        opts.QuoteStore,
		stateStore:        opts.StateStore,
		searchResultStore: opts.SearchResultStore,
		season:            opts.Season,
		entryRange:        opts.EntryRange,
		exitRange:         opts.ExitRange,
		workers:           opts.Workers,
		unitTimeout:       opts.UnitTimeout,
		expectedRunTime:   opts.ExpectedRunDuration,
		alignConfig:       opts.AlignConfig,
		simConfig:         opts.SimConfig,
		dryRun:            opts.DryRun,
		verbose:           opts.Verbose,
		recorder:          diag.NewRecorder(),
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RunID                 string
	GamesLoaded           int
	GamesAligned          int
	CombinationsEvaluated int
	RecordsPersisted      int
	DiagSummary           string
	Errors                []string
}

// Run executes the full E2E pipeline.
// Phases:
//  1. Load games and split assignments for the season
//  2. Align the three timeseries of each game into snapshots
//  3. Run the threshold grid search over all (combination, game) units
//  4. Persist one result row per (combination, split)
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()
	result := &RunResult{}

	// Phase 1: Load games and splits
	o.log("Phase 1: Loading games for season %s...", o.season)
	games, splits, err := o.loadGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load games) failed: %w", err)
	}
	result.GamesLoaded = len(games)
	o.log("  Found %d games with split assignments", len(games))

	if len(games) == 0 {
		o.noteOverTime(started)
		result.DiagSummary = o.recorder.Summary()
		return result, nil
	}

	// Phase 2: Alignment
	o.log("Phase 2: Aligning timeseries...")
	gameData, alignErrors := o.runAlignment(ctx, games, splits)
	result.GamesAligned = len(gameData)
	result.Errors = append(result.Errors, alignErrors...)
	o.log("  Aligned %d games (%d errors)", len(gameData), len(alignErrors))

	if len(gameData) == 0 {
		o.noteOverTime(started)
		result.DiagSummary = o.recorder.Summary()
		return result, nil
	}

	// Phase 3: Grid search
	o.log("Phase 3: Running grid search...")
	searchResults, err := o.runGridSearch(ctx, gameData)
	if err != nil {
		observability.RecordGridRun("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("phase 3 (grid search) failed: %w", err)
	}
	result.CombinationsEvaluated = len(searchResults.Combinations)
	o.log("  Evaluated %d combinations (%d failed units)",
		len(searchResults.Combinations), searchResults.FailedUnits)

	// Phase 4: Persistence
	result.RunID = o.computeRunID(gameData)
	if o.dryRun {
		o.log("Phase 4: Skipping persistence (dryRun=true)")
	} else {
		o.log("Phase 4: Persisting results...")
		persisted, err := o.persistResults(ctx, result.RunID, searchResults)
		if err != nil {
			return nil, fmt.Errorf("phase 4 (persist) failed: %w", err)
		}
		result.RecordsPersisted = persisted
		o.log("  Persisted %d records under run %s", persisted, result.RunID)
	}

	status := "ok"
	if searchResults.Canceled {
		status = "canceled"
	}
	observability.RecordGridRun(status, time.Since(started).Seconds())

	o.noteOverTime(started)
	result.DiagSummary = o.recorder.Summary()
	o.log("Pipeline completed: %d games, %d combinations, %d records",
		result.GamesAligned, result.CombinationsEvaluated, result.RecordsPersisted)

	return result, nil
}

// loadGames loads season games and their split assignments. Games without
// an assignment are excluded from the run.
func (o *Orchestrator) loadGames(ctx context.Context) ([]*domain.Game, map[string]domain.Split, error) {
	games, err := o.gameStore.GetBySeason(ctx, o.season)
	if err != nil {
		return nil, nil, err
	}

	splitByGame := make(map[string]domain.Split)
	for _, split := range domain.Splits {
		assignments, err := o.splitStore.GetBySeasonSplit(ctx, o.season, split)
		if err != nil {
			return nil, nil, err
		}
		for _, a := range assignments {
			splitByGame[a.GameID] = a.Split
		}
	}

	assigned := make([]*domain.Game, 0, len(games))
	for _, g := range games {
		if _, ok := splitByGame[g.GameID]; !ok {
			o.recorder.Record(diag.CategoryUnassignedGame, g.GameID, "no split assignment")
			continue
		}
		assigned = append(assigned, g)
	}
	return assigned, splitByGame, nil
}

// runAlignment aligns each game's timeseries into a snapshot sequence.
// Games that cannot be aligned are reported and skipped; review flags
// raised by the aligner are written back to the game store.
func (o *Orchestrator) runAlignment(ctx context.Context, games []*domain.Game, splits map[string]domain.Split) ([]*gridsearch.GameData, []string) {
	aligner := align.New(o.alignConfig, o.recorder)

	var data []*gridsearch.GameData
	var errs []string

	for _, g := range games {
		alignStart := time.Now()

		model, err := o.probStore.GetByGameID(ctx, g.GameID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("load model series %s: %v", g.GameID, err))
			continue
		}
		quotes, err := o.quoteStore.GetByGameID(ctx, g.GameID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("load quote series %s: %v", g.GameID, err))
			continue
		}
		states, err := o.stateStore.GetByGameID(ctx, g.GameID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("load state series %s: %v", g.GameID, err))
			continue
		}

		snaps, report, err := aligner.Align(g.GameID, model, quotes, states)
		if err != nil {
			// A game without model output cannot be evaluated; skip it
			if errors.Is(err, align.ErrNoModelStream) {
				continue
			}
			errs = append(errs, fmt.Sprintf("align %s: %v", g.GameID, err))
			continue
		}

		if report.ReviewFlag != "" {
			if err := o.gameStore.SetReviewFlag(ctx, g.GameID, report.ReviewFlag); err != nil {
				errs = append(errs, fmt.Sprintf("flag %s: %v", g.GameID, err))
			}
		}

		observability.RecordGameAligned(len(snaps), time.Since(alignStart).Seconds())

		data = append(data, &gridsearch.GameData{
			GameID:    g.GameID,
			Split:     splits[g.GameID],
			Snapshots: snaps,
		})
	}

	return data, errs
}

// runGridSearch enumerates the grid and dispatches all units.
func (o *Orchestrator) runGridSearch(ctx context.Context, games []*gridsearch.GameData) (*gridsearch.Results, error) {
	combos, err := gridsearch.EnumerateGrid(o.entryRange, o.exitRange)
	if err != nil {
		return nil, err
	}

	runner := gridsearch.New(gridsearch.Options{
		Workers:     o.workers,
		UnitTimeout: o.unitTimeout,
		SimConfig:   o.simConfig,
		Recorder:    o.recorder,
	})

	return runner.Run(ctx, combos, games)
}

// persistResults flattens the search output into append-only rows.
// A rerun over identical inputs produces the same run ID; its rows
// already exist and the duplicate batch is treated as a no-op.
func (o *Orchestrator) persistResults(ctx context.Context, runID string, res *gridsearch.Results) (int, error) {
	records := results.ToRecords(runID, o.season, res)
	if len(records) == 0 {
		return 0, nil
	}

	if err := o.searchResultStore.InsertBulk(ctx, records); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			o.log("  Run %s already persisted, skipping", runID)
			return 0, nil
		}
		return 0, err
	}
	return len(records), nil
}

// computeRunID derives the deterministic run identifier from the season,
// the grid bounds and the participating game IDs.
func (o *Orchestrator) computeRunID(games []*gridsearch.GameData) string {
	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.GameID)
	}
	sort.Strings(gameIDs)

	return idhash.ComputeRunID(o.season,
		o.entryRange.Min, o.entryRange.Max, o.entryRange.Step,
		o.exitRange.Min, o.exitRange.Max, o.exitRange.Step,
		gameIDs)
}

// noteOverTime tallies the whole-run duration against the configured
// expectation. An over-time run still reports success; the tally shows
// up in the diagnostic summary.
func (o *Orchestrator) noteOverTime(started time.Time) {
	if o.expectedRunTime <= 0 {
		return
	}
	if elapsed := time.Since(started); elapsed > o.expectedRunTime {
		o.recorder.Record(diag.CategoryRunOverTime, "",
			fmt.Sprintf("elapsed=%s expected=%s", elapsed.Round(time.Millisecond), o.expectedRunTime))
	}
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
