package diag

import (
	"strings"
	"sync"
	"testing"
)

func TestRecorder_CountAndSample(t *testing.T) {
	r := NewRecorder()

	r.Record(CategoryStaleQuote, "g1", "age=12000ms")
	r.Record(CategoryStaleQuote, "g2", "age=15000ms")
	r.Record(CategoryMissingMarket, "g3", "")

	if got := r.Count(CategoryStaleQuote); got != 2 {
		t.Errorf("Count(stale_quote) = %d, want 2", got)
	}
	if got := r.Count(CategoryMissingMarket); got != 1 {
		t.Errorf("Count(missing_market) = %d, want 1", got)
	}
	if got := r.Count(CategoryEndOfGame); got != 0 {
		t.Errorf("Count(end_of_game) = %d, want 0", got)
	}

	summary := r.Summary()
	if !strings.Contains(summary, "stale_quote: 2") {
		t.Errorf("summary missing stale_quote tally:\n%s", summary)
	}
	// First sample wins
	if !strings.Contains(summary, "game=g1") {
		t.Errorf("summary should keep first stale_quote sample:\n%s", summary)
	}
}

func TestRecorder_SummaryCanonicalOrder(t *testing.T) {
	r := NewRecorder()
	r.Record(CategoryWorkerFailed, "g1", "boom")
	r.Record(CategoryMissingMarket, "g2", "")

	summary := r.Summary()
	missingIdx := strings.Index(summary, string(CategoryMissingMarket))
	failedIdx := strings.Index(summary, string(CategoryWorkerFailed))
	if missingIdx < 0 || failedIdx < 0 || missingIdx > failedIdx {
		t.Errorf("summary not in canonical order:\n%s", summary)
	}
}

func TestRecorder_Merge(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()

	a.Record(CategoryEndOfGame, "g1", "")
	b.Record(CategoryEndOfGame, "g2", "")
	b.Record(CategoryInvalidPrice, "g2", "ask=0")

	a.Merge(b)

	if got := a.Count(CategoryEndOfGame); got != 2 {
		t.Errorf("merged Count(end_of_game) = %d, want 2", got)
	}
	if got := a.Count(CategoryInvalidPrice); got != 1 {
		t.Errorf("merged Count(invalid_price) = %d, want 1", got)
	}
	// a's own sample is kept for categories it already had
	if !strings.Contains(a.Summary(), "game=g1") {
		t.Errorf("merge overwrote existing sample:\n%s", a.Summary())
	}
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Record(CategoryInconsistency, "g", "")
			}
		}()
	}
	wg.Wait()

	if got := r.Count(CategoryInconsistency); got != 800 {
		t.Errorf("concurrent Count = %d, want 800", got)
	}
}
