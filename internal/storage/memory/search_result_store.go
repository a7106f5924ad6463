package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// SearchResultStore is an in-memory implementation of storage.SearchResultStore.
type SearchResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SearchResultRecord // keyed by (run_id, entry, exit, split)
}

// NewSearchResultStore creates a new in-memory search result store.
func NewSearchResultStore() *SearchResultStore {
	return &SearchResultStore{
		data: make(map[string]*domain.SearchResultRecord),
	}
}

// resultKey generates a unique key for a search result record.
func resultKey(r *domain.SearchResultRecord) string {
	return fmt.Sprintf("%s|%s|%s", r.RunID, r.CombinationKey(), r.Split)
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SearchResultStore) InsertBulk(_ context.Context, records []*domain.SearchResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RunID == "" || !r.Split.Valid() {
			return storage.ErrInvalidInput
		}
		key := resultKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	now := time.Now().UnixMilli()
	for _, r := range records {
		recordCopy := *r
		recordCopy.CreatedAt = now
		s.data[resultKey(r)] = &recordCopy
	}
	return nil
}

// GetByRunID retrieves all records for a run, ordered by
// (exit_threshold, entry_threshold, split) ASC.
func (s *SearchResultStore) GetByRunID(_ context.Context, runID string) ([]*domain.SearchResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SearchResultRecord
	for _, r := range s.data {
		if r.RunID == runID {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.ExitThreshold != b.ExitThreshold {
			return a.ExitThreshold < b.ExitThreshold
		}
		if a.EntryThreshold != b.EntryThreshold {
			return a.EntryThreshold < b.EntryThreshold
		}
		return splitRank(a.Split) < splitRank(b.Split)
	})

	return result, nil
}

// ListRunIDs retrieves distinct run IDs for a season, most recent first.
func (s *SearchResultStore) ListRunIDs(_ context.Context, season string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]int64)
	for _, r := range s.data {
		if r.Season != season {
			continue
		}
		if ts, ok := latest[r.RunID]; !ok || r.CreatedAt > ts {
			latest[r.RunID] = r.CreatedAt
		}
	}

	runIDs := make([]string, 0, len(latest))
	for id := range latest {
		runIDs = append(runIDs, id)
	}
	sort.Slice(runIDs, func(i, j int) bool {
		if latest[runIDs[i]] != latest[runIDs[j]] {
			return latest[runIDs[i]] > latest[runIDs[j]]
		}
		return runIDs[i] < runIDs[j]
	})

	return runIDs, nil
}

// splitRank orders splits train, valid, test.
func splitRank(split domain.Split) int {
	for i, s := range domain.Splits {
		if s == split {
			return i
		}
	}
	return len(domain.Splits)
}

var _ storage.SearchResultStore = (*SearchResultStore)(nil)
