// Package align merges the model-probability, market-quote and game-state
// time series of a game into one ordered snapshot sequence.
package align

import (
	"errors"
	"fmt"
	"sort"

	"sports-edge-lab/internal/diag"
	"sports-edge-lab/internal/domain"
)

// Aligner errors.
var (
	// ErrNoModelStream means there is nothing to align against. A game
	// without model output cannot be evaluated at all.
	ErrNoModelStream = errors.New("no model probability stream for game")
)

// Config bounds the alignment joins.
type Config struct {
	// StateToleranceMs is the nearest-join window for game-state points.
	// A model timestamp with no state point within the window keeps the
	// model's own feature snapshot.
	StateToleranceMs int64
	// MaxQuoteStalenessMs is how long a carried-forward quote stays
	// tradable. Older quotes are still carried but marked price-invalid.
	MaxQuoteStalenessMs int64
}

// DefaultConfig returns the alignment bounds used in production runs.
func DefaultConfig() Config {
	return Config{
		StateToleranceMs:    15_000,
		MaxQuoteStalenessMs: 60_000,
	}
}

// Report summarizes data-quality findings from one alignment pass.
type Report struct {
	GameID          string
	SnapshotCount   int
	MarketMissing   bool // no market stream at all; trading excluded
	MirroredBook    bool // overround regression signal; fallback applied
	StaleSnapshots  int  // snapshots marked price-invalid for staleness
	ReviewFlag      string
}

// Aligner produces aligned snapshot sequences. Diagnostics are tallied on
// the recorder instead of logged.
type Aligner struct {
	cfg      Config
	recorder *diag.Recorder
}

// New creates an aligner. A nil recorder disables diagnostics.
func New(cfg Config, recorder *diag.Recorder) *Aligner {
	if recorder == nil {
		recorder = diag.NewRecorder()
	}
	return &Aligner{cfg: cfg, recorder: recorder}
}

// Align joins the three series into one ordered snapshot sequence.
// The model series drives the output: one snapshot per model point, in
// timestamp order. Quotes are carried forward up to the staleness limit;
// beyond it the snapshot stays usable for probability evaluation but is
// marked price-invalid. A game with no market stream is never an error.
func (a *Aligner) Align(
	gameID string,
	model []*domain.ModelProbPoint,
	quotes []*domain.MarketQuotePoint,
	states []*domain.GameStatePoint,
) ([]*domain.Snapshot, *Report, error) {
	if len(model) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoModelStream, gameID)
	}

	model = sortedModel(model)
	quotes = sortedQuotes(quotes)
	states = sortedStates(states)

	report := &Report{GameID: gameID}

	if len(quotes) == 0 {
		report.MarketMissing = true
		a.recorder.Record(diag.CategoryMissingMarket, gameID, "")
	} else if MirroredBook(quotes) {
		// Home- and away-implied prices sum to ≈1 where two independent books
		// were expected: a data-format regression. Flag for review and
		// take home prices as-is instead of de-vigging.
		report.MirroredBook = true
		report.ReviewFlag = "mirrored away book, de-vig skipped"
		a.recorder.Record(diag.CategoryOverroundFlag, gameID, "home+away implied sum ~= 1.0")
	}

	snapshots := make([]*domain.Snapshot, 0, len(model))
	qi := 0 // index of next unconsumed quote

	for seq, mp := range model {
		snap := &domain.Snapshot{
			GameID:        gameID,
			Sequence:      seq,
			TimestampMs:   mp.TimestampMs,
			ProbHome:      mp.ProbHome,
			PointDiff:     mp.PointDiff,
			SecondsLeft:   mp.SecondsLeft,
			HomePossesses: mp.HomePossesses,
		}

		// Carry the latest quote at or before the model timestamp.
		for qi < len(quotes) && quotes[qi].TimestampMs <= mp.TimestampMs {
			qi++
		}
		if qi > 0 {
			q := quotes[qi-1]
			bid, ask := a.tradePrices(q, report.MirroredBook)
			snap.Bid = bid
			snap.Ask = ask
			snap.QuoteAgeMs = mp.TimestampMs - q.TimestampMs
			snap.PriceValid = bid > 0 && ask > 0 && snap.QuoteAgeMs <= a.cfg.MaxQuoteStalenessMs
			if !snap.PriceValid && snap.QuoteAgeMs > a.cfg.MaxQuoteStalenessMs {
				report.StaleSnapshots++
				a.recorder.Record(diag.CategoryStaleQuote, gameID,
					fmt.Sprintf("age=%dms seq=%d", snap.QuoteAgeMs, seq))
			}
		}

		// Nearest game-state point within tolerance overrides the model's
		// own feature snapshot.
		if sp := nearestState(states, mp.TimestampMs, a.cfg.StateToleranceMs); sp != nil {
			snap.PointDiff = sp.PointDiff
			snap.SecondsLeft = sp.SecondsLeft
			snap.HomePossesses = sp.HomePossesses
		}

		snapshots = append(snapshots, snap)
	}

	report.SnapshotCount = len(snapshots)
	return snapshots, report, nil
}

// tradePrices extracts the tradable home bid/ask from a quote, applying the
// mirrored-book fallback when flagged.
func (a *Aligner) tradePrices(q *domain.MarketQuotePoint, mirrored bool) (bid, ask float64) {
	bid, ask = q.Bid, q.Ask

	// Fallback conversion: a mirrored book sometimes drops one home side
	// while keeping its away complement.
	if mirrored {
		if bid <= 0 && q.AwayAsk > 0 {
			bid = 1 - q.AwayAsk
		}
		if ask <= 0 && q.AwayBid > 0 {
			ask = 1 - q.AwayBid
		}
	}

	if !domain.PriceTradable(bid) {
		bid = 0
	}
	if !domain.PriceTradable(ask) {
		ask = 0
	}
	return bid, ask
}

// nearestState returns the state point closest to target within tolerance,
// or nil. States must be sorted by timestamp.
func nearestState(states []*domain.GameStatePoint, target, toleranceMs int64) *domain.GameStatePoint {
	if len(states) == 0 {
		return nil
	}

	// First point at or after target.
	i := sort.Search(len(states), func(i int) bool {
		return states[i].TimestampMs >= target
	})

	var best *domain.GameStatePoint
	bestDist := toleranceMs + 1
	if i < len(states) {
		if d := states[i].TimestampMs - target; d < bestDist {
			best = states[i]
			bestDist = d
		}
	}
	if i > 0 {
		if d := target - states[i-1].TimestampMs; d < bestDist {
			best = states[i-1]
		}
	}
	return best
}

func sortedModel(points []*domain.ModelProbPoint) []*domain.ModelProbPoint {
	out := make([]*domain.ModelProbPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimestampMs != out[j].TimestampMs {
			return out[i].TimestampMs < out[j].TimestampMs
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func sortedQuotes(points []*domain.MarketQuotePoint) []*domain.MarketQuotePoint {
	out := make([]*domain.MarketQuotePoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

func sortedStates(points []*domain.GameStatePoint) []*domain.GameStatePoint {
	out := make([]*domain.GameStatePoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}
