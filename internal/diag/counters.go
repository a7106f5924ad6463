// Package diag provides typed diagnostic counters for a grid-search run.
// Each category replaces a free-text log prefix; events carry structured
// context and are tallied per category rather than grepped out of logs.
package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Category is one diagnostic event class. The set is closed: downstream
// reporting iterates AllCategories, so new categories must be added there.
type Category string

// Diagnostic categories.
const (
	// CategoryMissingMarket: game has no market stream at all; excluded
	// from trading metrics, still usable for probability evaluation.
	CategoryMissingMarket Category = "missing_market"
	// CategoryStaleQuote: market data exceeded the staleness limit at a
	// model timestamp; the snapshot was marked price-invalid.
	CategoryStaleQuote Category = "stale_quote"
	// CategoryOverroundFlag: home- and away-implied prices summed to ≈1
	// where independence was expected; fallback conversion applied.
	CategoryOverroundFlag Category = "overround_flag"
	// CategoryEndOfGame: a position was force-closed at the final snapshot.
	CategoryEndOfGame Category = "end_of_game"
	// CategoryInvalidPrice: a trade was closed defensively with zero P&L
	// because its entry or exit price was missing or degenerate.
	CategoryInvalidPrice Category = "invalid_price"
	// CategoryInconsistency: long and short entry conditions fired on the
	// same snapshot; no action was taken.
	CategoryInconsistency Category = "inconsistency"
	// CategoryUnassignedGame: a season game has no split assignment and
	// was excluded from the run.
	CategoryUnassignedGame Category = "unassigned_game"
	// CategoryWorkerRetry: a simulation unit failed once and was retried.
	CategoryWorkerRetry Category = "worker_retry"
	// CategoryWorkerFailed: a simulation unit failed after its retry.
	CategoryWorkerFailed Category = "worker_failed"
	// CategoryRunOverTime: the whole run exceeded its expected duration.
	// Operational warning, not a correctness failure.
	CategoryRunOverTime Category = "run_over_time"
)

// AllCategories lists categories in canonical report order.
var AllCategories = []Category{
	CategoryMissingMarket,
	CategoryStaleQuote,
	CategoryOverroundFlag,
	CategoryEndOfGame,
	CategoryInvalidPrice,
	CategoryInconsistency,
	CategoryUnassignedGame,
	CategoryWorkerRetry,
	CategoryWorkerFailed,
	CategoryRunOverTime,
}

// Event is one recorded diagnostic occurrence.
type Event struct {
	Category Category
	GameID   string
	Detail   string
}

// Recorder tallies diagnostic events. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	counts map[Category]int
	sample map[Category]Event // first event per category, for the summary
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		counts: make(map[Category]int),
		sample: make(map[Category]Event),
	}
}

// Record tallies one event.
func (r *Recorder) Record(category Category, gameID, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[category]++
	if _, seen := r.sample[category]; !seen {
		r.sample[category] = Event{Category: category, GameID: gameID, Detail: detail}
	}
}

// Count returns the tally for one category.
func (r *Recorder) Count(category Category) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[category]
}

// Counts returns a copy of all non-zero tallies.
func (r *Recorder) Counts() map[Category]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Category]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Merge adds other's tallies into r. Samples from other are kept only for
// categories r has not seen.
func (r *Recorder) Merge(other *Recorder) {
	if other == nil {
		return
	}

	other.mu.Lock()
	counts := make(map[Category]int, len(other.counts))
	samples := make(map[Category]Event, len(other.sample))
	for k, v := range other.counts {
		counts[k] = v
	}
	for k, v := range other.sample {
		samples[k] = v
	}
	other.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range counts {
		r.counts[k] += v
		if _, seen := r.sample[k]; !seen {
			r.sample[k] = samples[k]
		}
	}
}

// Summary renders non-zero tallies in canonical order, one per line.
// Returns "" when nothing was recorded.
func (r *Recorder) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, c := range AllCategories {
		n := r.counts[c]
		if n == 0 {
			continue
		}
		s := r.sample[c]
		if s.GameID != "" || s.Detail != "" {
			fmt.Fprintf(&sb, "%s: %d (first: game=%s %s)\n", c, n, s.GameID, s.Detail)
		} else {
			fmt.Fprintf(&sb, "%s: %d\n", c, n)
		}
	}
	return sb.String()
}

// SortedCategories returns recorded categories sorted lexically.
// Used by tests and renderers that need deterministic iteration over
// whatever was actually recorded.
func (r *Recorder) SortedCategories() []Category {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]Category, 0, len(r.counts))
	for k := range r.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
