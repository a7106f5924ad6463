package gridsearch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"sports-edge-lab/internal/diag"
	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/sim"
)

// GameData is the read-only simulation input for one game. Workers never
// mutate it; one copy is shared by every combination.
type GameData struct {
	GameID    string
	Split     domain.Split
	Snapshots []*domain.Snapshot
}

// Options configures a grid-search run.
type Options struct {
	// Workers bounds the pool; <= 0 uses runtime.NumCPU().
	Workers int
	// UnitTimeout bounds one (combination, game) simulation.
	// Zero disables the guard.
	UnitTimeout time.Duration
	// SimConfig is forwarded to every simulator.
	SimConfig sim.Config
	// Recorder receives diagnostics; nil disables them.
	Recorder *diag.Recorder
}

// Results is the collected output of one run.
type Results struct {
	// Combinations holds one entry per fully completed combination, in
	// grid enumeration order. Combinations interrupted by cancellation
	// are omitted; completed ones stay valid.
	Combinations []*domain.CombinationResult
	// ByKey indexes Combinations by quantized combination key.
	ByKey map[string]*domain.CombinationResult

	FailedUnits int
	Canceled    bool
}

// Orchestrator dispatches (combination, game) units across a worker pool
// and folds the results per combination and split.
type Orchestrator struct {
	opts     Options
	recorder *diag.Recorder
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = diag.NewRecorder()
	}
	return &Orchestrator{opts: opts, recorder: recorder}
}

// workItem is one immutable unit of work. Workers receive these by value;
// nothing mutable is closed over.
type workItem struct {
	comboIdx int
	combo    domain.ParameterCombination
	game     *GameData
}

// unitResult carries one unit's outcome back to the collector.
type unitResult struct {
	comboIdx int
	gameID   string
	split    domain.Split
	result   *domain.GameResult
	err      error
}

// Run executes every combination against every game. Identical inputs
// produce identical results regardless of worker count: assembly happens
// after collection, in grid order with games sorted by ID.
//
// Configuration errors abort before any unit is scheduled. Cancellation
// stops scheduling; combinations whose units had all completed remain in
// the results.
func (o *Orchestrator) Run(ctx context.Context, combos []domain.ParameterCombination, games []*GameData) (*Results, error) {
	if len(combos) == 0 {
		return nil, fmt.Errorf("%w: no parameter combinations", ErrInvalidThresholdRange)
	}
	if err := validateSplits(games); err != nil {
		return nil, err
	}

	units := len(combos) * len(games)
	workCh := make(chan workItem, units)
	resultCh := make(chan unitResult, units)

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				resultCh <- o.runUnitWithRetry(ctx, item)
			}
		}()
	}

	// Feed every unit unless canceled mid-scheduling.
	canceled := false
feed:
	for _, game := range games {
		for i, combo := range combos {
			select {
			case <-ctx.Done():
				canceled = true
				break feed
			case workCh <- workItem{comboIdx: i, combo: combo, game: game}:
			}
		}
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect into per-combination buckets.
	type bucket struct {
		results map[string]*domain.GameResult // by game ID
		failed  map[string]domain.Split       // failed game → split
		units   int
	}
	buckets := make([]bucket, len(combos))
	for i := range buckets {
		buckets[i] = bucket{
			results: make(map[string]*domain.GameResult),
			failed:  make(map[string]domain.Split),
		}
	}

	failedUnits := 0
	for r := range resultCh {
		b := &buckets[r.comboIdx]
		b.units++
		if r.err != nil {
			if ctx.Err() != nil {
				// Interrupted, not failed; the combination is dropped
				// below for being incomplete.
				canceled = true
				continue
			}
			failedUnits++
			b.failed[r.gameID] = r.split
			continue
		}
		b.results[r.gameID] = r.result
	}

	out := &Results{
		ByKey:       make(map[string]*domain.CombinationResult),
		FailedUnits: failedUnits,
		Canceled:    canceled || ctx.Err() != nil,
	}

	for i, combo := range combos {
		b := &buckets[i]
		if b.units != len(games) {
			continue // interrupted combination
		}
		cr := assembleCombination(combo, games, b.results, b.failed)
		out.Combinations = append(out.Combinations, cr)
		out.ByKey[combo.Key()] = cr
	}

	return out, nil
}

// runUnitWithRetry runs one unit, retrying once on failure. A unit that
// fails twice is marked failed without affecting sibling units.
func (o *Orchestrator) runUnitWithRetry(ctx context.Context, item workItem) unitResult {
	res, err := o.runUnit(ctx, item)
	if err != nil && ctx.Err() == nil {
		o.recorder.Record(diag.CategoryWorkerRetry, item.game.GameID,
			fmt.Sprintf("combo=%s err=%v", item.combo.Key(), err))
		res, err = o.runUnit(ctx, item)
		if err != nil && ctx.Err() == nil {
			o.recorder.Record(diag.CategoryWorkerFailed, item.game.GameID,
				fmt.Sprintf("combo=%s err=%v", item.combo.Key(), err))
		}
	}
	return unitResult{
		comboIdx: item.comboIdx,
		gameID:   item.game.GameID,
		split:    item.game.Split,
		result:   res,
		err:      err,
	}
}

// runUnit executes one simulation under the unit timeout.
// The simulation itself is a pure synchronous function of its inputs;
// the goroutine only exists to enforce the timeout.
func (o *Orchestrator) runUnit(ctx context.Context, item workItem) (*domain.GameResult, error) {
	type outcome struct {
		result *domain.GameResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("simulation panic: %v", r)}
			}
		}()
		s := sim.New(item.combo, o.opts.SimConfig, o.recorder)
		res, err := s.Run(item.game.GameID, item.game.Snapshots)
		done <- outcome{result: res, err: err}
	}()

	var timeout <-chan time.Time
	if o.opts.UnitTimeout > 0 {
		timer := time.NewTimer(o.opts.UnitTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, fmt.Errorf("unit %s/%s exceeded timeout %s",
			item.combo.Key(), item.game.GameID, o.opts.UnitTimeout)
	case oc := <-done:
		return oc.result, oc.err
	}
}

// assembleCombination folds per-game results into per-split aggregates,
// iterating games sorted by ID for deterministic output.
func assembleCombination(
	combo domain.ParameterCombination,
	games []*GameData,
	results map[string]*domain.GameResult,
	failed map[string]domain.Split,
) *domain.CombinationResult {
	ordered := make([]*GameData, len(games))
	copy(ordered, games)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].GameID < ordered[j].GameID })

	cr := &domain.CombinationResult{
		Combination: combo,
		BySplit:     make(map[domain.Split]*domain.SplitResult, len(domain.Splits)),
	}
	for _, split := range domain.Splits {
		cr.BySplit[split] = &domain.SplitResult{Combination: combo, Split: split}
	}

	for _, g := range ordered {
		sr := cr.BySplit[g.Split]
		if _, isFailed := failed[g.GameID]; isFailed {
			sr.FailedGames = append(sr.FailedGames, g.GameID)
			continue
		}
		gr, ok := results[g.GameID]
		if !ok {
			continue
		}
		sr.GameResults = append(sr.GameResults, gr)
	}

	for _, split := range domain.Splits {
		finalizeSplit(cr.BySplit[split])
	}
	return cr
}

// finalizeSplit computes the aggregate metrics of one split result.
func finalizeSplit(sr *domain.SplitResult) {
	var grossProfit, grossLoss float64
	wins := 0

	sr.GameCount = len(sr.GameResults)
	for _, gr := range sr.GameResults {
		sr.NetProfitDollars += gr.NetProfitDollars
		sr.TradeCount += gr.TradeCount
		for _, t := range gr.Trades {
			switch {
			case t.PnLDollars > 0:
				grossProfit += t.PnLDollars
				wins++
			case t.PnLDollars < 0:
				grossLoss += t.PnLDollars
			}
		}
	}

	if sr.GameCount > 0 {
		sr.ProfitPerGame = sr.NetProfitDollars / float64(sr.GameCount)
	}
	if sr.TradeCount > 0 {
		sr.WinRate = float64(wins) / float64(sr.TradeCount)
	}
	if grossLoss < 0 {
		pf := grossProfit / -grossLoss
		sr.ProfitFactor = &pf
	}
}

// validateSplits requires at least one game in every split.
func validateSplits(games []*GameData) error {
	counts := make(map[domain.Split]int, len(domain.Splits))
	for _, g := range games {
		counts[g.Split]++
	}
	for _, split := range domain.Splits {
		if counts[split] == 0 {
			return fmt.Errorf("%w: %s", ErrEmptySplit, split)
		}
	}
	return nil
}
